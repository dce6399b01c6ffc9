package web

import "net/http"

// GET /presets
func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.Presets)
}
