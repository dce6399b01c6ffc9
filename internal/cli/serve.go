package cli

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"printshop/internal/products"
	"printshop/internal/session"
	"printshop/internal/web"
)

const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr      string
	templates string
	static    string
}

func newServeCmd(a *app) *cobra.Command {
	opts := serveOpts{templates: "templates", static: "static"}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.templates, "templates", opts.templates, "directory holding layout.html and index.html")
	cmd.Flags().StringVar(&opts.static, "static", opts.static, "directory served under /static/")
	return cmd
}

func parseTemplates(dir string) (*template.Template, error) {
	return template.ParseFiles(
		filepath.Join(dir, "layout.html"),
		filepath.Join(dir, "index.html"),
	)
}

func runServe(ctx context.Context, a *app, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg := a.cfg
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}

	tmpl, err := parseTemplates(opts.templates)
	if err != nil {
		return err
	}

	store := session.NewMemoryStore[products.Queue](cfg.SessionTTL)
	if cfg.SessionTTL > 0 {
		go store.Janitor(ctx, cfg.SessionTTL/4, func(dropped int) {
			logger.Debug("expired sessions", "dropped", dropped, "live", store.Len())
		})
	}

	srv := &web.Server{
		Config:    cfg,
		Presets:   a.presets,
		Store:     store,
		Tmpl:      tmpl,
		Log:       logger,
		StaticDir: opts.static,
	}
	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "dpi", cfg.DPI)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
