package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"

	"printshop/internal/config"
	"printshop/internal/fit"
	"printshop/internal/mask"
	"printshop/internal/products"
	"printshop/internal/session"
	"printshop/internal/sheet"
	"printshop/internal/units"
)

type Server struct {
	Config  config.Config
	Presets *products.Presets
	Store   session.Store[products.Queue]
	Tmpl    *template.Template
	Log     *log.Logger
	// StaticDir is served under /static/; empty means "static".
	StaticDir string
}

const cookieName = "printshop_sid"

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /presets", s.handlePresets)

	mux.HandleFunc("POST /render/{product}", s.handleRender)

	mux.HandleFunc("GET /queue", s.handleQueueList)
	mux.HandleFunc("POST /queue", s.handleQueueAdd)
	mux.HandleFunc("POST /queue/clear", s.handleQueueClear)
	mux.HandleFunc("POST /queue/{index}/{action}", s.handleQueueAction)
	mux.HandleFunc("GET /queue/pdf", s.handleQueuePDF)

	mux.HandleFunc("GET /static/", s.handleStatic)
	return s.logRequests(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q, _ := s.getOrCreateQueue(r.Context(), w, r)
	vm := IndexViewModel{
		Presets: s.Presets,
		Config:  s.Config,
		Queue:   queueEntries(q),
		MinDPI:  config.MinDPI,
		MaxDPI:  config.MaxDPI,

		Products: productViews,
	}
	if err := s.Tmpl.ExecuteTemplate(w, "layout.html", vm); err != nil {
		s.logger().Error("rendering index", "err", err)
		http.Error(w, err.Error(), 500)
	}
}

func (s *Server) getOrCreateQueue(ctx context.Context, w http.ResponseWriter, r *http.Request) (products.Queue, string) {
	id, isNew := s.sessionOrNew(w, r)
	if isNew {
		return products.Queue{}, id
	}
	q, _, err := s.Store.Get(ctx, id)
	if err != nil {
		s.logger().Warn("session lookup failed", "err", err)
	}
	return q, id
}

// sessionOrNew returns the request's session id, issuing a cookie for a new
// one when the request has none.
func (s *Server) sessionOrNew(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id := s.sessionID(r); id != "" {
		return id, false
	}
	id := s.Store.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) logger() *log.Logger {
	if s.Log == nil {
		return log.Default()
	}
	return s.Log
}

// errBadRequest marks request problems found before the engine runs.
var errBadRequest = errors.New("bad request")

// writeError maps engine and request errors to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, errBadRequest),
		errors.Is(err, units.ErrInvalidMeasurement),
		errors.Is(err, fit.ErrInvalidSource),
		errors.Is(err, sheet.ErrInvalidPlacement),
		errors.Is(err, mask.ErrSizeMismatch),
		errors.Is(err, products.ErrInvalidOption):
		s.logger().Debug("rejected request", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger().Error("request failed", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
