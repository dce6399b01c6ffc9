package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const assetCacheControl = "public, max-age=3600"

func (s *Server) staticBase() string {
	if s.StaticDir != "" {
		return s.StaticDir
	}
	return "static"
}

// assetPath validates the request path and resolves it under the static
// directory. Nested paths are allowed; anything escaping the directory is not.
func (s *Server) assetPath(urlPath string) (string, bool) {
	name := strings.Trim(strings.TrimPrefix(urlPath, "/static/"), "/")
	if name == "" {
		return "", false
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", false
	}
	base := s.staticBase()
	resolved := filepath.Join(base, clean)
	rel, err := filepath.Rel(base, resolved)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return resolved, true
}

// GET /static/
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	p, ok := s.assetPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(p) // #nosec G304 -- p is under the validated static dir
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", assetCacheControl)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
