package control_http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type StatusSource interface {
	LastStatus() *domain.OverallStatus
}

type Refresher interface {
	Trigger()
}

type MenuSource interface {
	Menu() domain.Menu
	URLFor(id string) (string, bool)
}

type Opener func(ctx context.Context, url string) error

type Server struct {
	log     *zap.Logger
	status  StatusSource
	refresh Refresher
	menu    MenuSource
	open    Opener
}

func New(l *zap.Logger, status StatusSource, refresh Refresher, menu MenuSource, open Opener) *Server {
	if open == nil {
		open = OpenBrowser
	}
	return &Server{log: l, status: status, refresh: refresh, menu: menu, open: open}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/status", s.getStatus)
	r.Post("/refresh", s.postRefresh)
	r.Get("/menu", s.getMenu)
	r.Post("/menu/{id}/open", s.openItem)

	return r
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	st := s.status.LastStatus()
	if st == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) {
	s.refresh.Trigger()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) getMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.menu.Menu())
}

func (s *Server) openItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, ok := s.menu.URLFor(id)
	if !ok {
		http.Error(w, "unknown menu item", http.StatusNotFound)
		return
	}

	s.log.Info("opening pipeline url", zap.String("id", id), zap.String("url", u))
	if err := s.open(r.Context(), u); err != nil {
		s.log.Warn("open failed", zap.String("url", u), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OpenBrowser(ctx context.Context, url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	// Start, not Run: the browser may outlive the request.
	return exec.CommandContext(context.WithoutCancel(ctx), name, url).Start()
}
