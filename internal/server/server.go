// Package server hosts the rendered site: it wires the feed synchronizer,
// the render controller, and the WebSocket hub behind an HTTP server that
// serves the shell page, per-route render output, and the update socket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/content"
	"github.com/driftline/driftline/internal/engine"
	"github.com/driftline/driftline/internal/feed"
	"github.com/driftline/driftline/internal/hub"
	"github.com/driftline/driftline/internal/logging"
	"github.com/driftline/driftline/internal/router"
	"github.com/driftline/driftline/internal/view"
)

// Server runs the driftline host.
type Server struct {
	cfg    *config.Config
	logger logging.Logger

	feed     *feed.Synchronizer
	watcher  *feed.FileWatcher
	ctrl     *engine.Controller
	hub      *hub.Hub
	surfaces *memorySurfaces

	httpServer   *http.Server
	unsubscribes []func()

	mu       sync.RWMutex
	degraded string
}

// New wires a server from configuration. Construction fails on invalid
// configuration; the feed itself is not touched until Start.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.WithComponent("server")

	synchronizer, err := feed.NewSynchronizer(feed.Options{
		URL:          cfg.Feed.URL,
		PollInterval: cfg.Feed.PollInterval(),
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	wsHub := hub.New(cfg.Server.AllowedOrigins, logger)
	surfaces := &memorySurfaces{}

	ctrl, err := engine.NewController(engine.Options{
		Surfaces: surfaces,
		// The host has no animated surface primitive; commits take the
		// immediate path after the frame boundary. Browser clients run
		// their own view transitions.
		ViewTransitions: false,
		OnRouteChange: func(route string) {
			wsHub.Broadcast(hub.Message{Type: "route", Route: route})
		},
		Logger: logger,
	})
	if err != nil {
		wsHub.Shutdown()
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		feed:     synchronizer,
		ctrl:     ctrl,
		hub:      wsHub,
		surfaces: surfaces,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleShell)
	mux.HandleFunc("GET /render/{route}", s.handleRender)
	mux.Handle("GET /ws", wsHub)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /static/site.css", s.handleCSS)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start performs the initial forced load, subscribes the controller and
// the hub to the synchronizer, arms polling (or file watching for local
// feeds), and serves HTTP until ctx is cancelled.
//
// A failed initial load does not leave a blank surface: the shell serves
// a visible degraded-mode message, and polling continues so a recovered
// feed clears it.
func (s *Server) Start(ctx context.Context) error {
	s.unsubscribes = append(s.unsubscribes,
		s.feed.Subscribe(s.ctrl.OnContentChange),
		s.feed.Subscribe(func(snap *content.Snapshot) {
			s.setDegraded("")
			s.hub.Broadcast(hub.Message{Type: "content", Fingerprint: snap.Fingerprint})
		}))

	if _, err := s.feed.Load(ctx, true); err != nil {
		s.logger.Error(ctx, err, "initial feed load failed, serving degraded mode")
		s.setDegraded("The content feed is currently unavailable. Retrying in the background.")
	}

	if path := localFeedPath(s.cfg.Feed.URL); path != "" {
		watcher, err := feed.NewFileWatcher(s.feed, 0)
		if err != nil {
			return fmt.Errorf("watch feed file %s: %w", path, err)
		}
		s.watcher = watcher
		watcher.Start(ctx)
	} else {
		s.feed.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "serving", "addr", s.httpServer.Addr, "feed", s.cfg.Feed.URL)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops polling, closes the hub, and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
	s.unsubscribes = nil
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.feed.Stop()
	s.hub.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setDegraded(msg string) {
	s.mu.Lock()
	s.degraded = msg
	s.mu.Unlock()
}

func (s *Server) degradedMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	out, committed := s.surfaces.Current()
	if !committed {
		if snap := s.feed.Current(); snap != nil {
			route := router.Resolve(s.cfg.Render.DefaultRoute, snap)
			if rendered, err := view.RenderRoute(route, snap); err == nil {
				out = rendered
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	shell := view.Shell(view.ShellParams{
		MountID:         s.cfg.Surfaces.Mount,
		NavID:           s.cfg.Surfaces.Nav,
		TitleID:         s.cfg.Surfaces.Title,
		Initial:         out,
		ViewTransitions: s.cfg.Render.ViewTransitions,
		DegradedMessage: s.degradedMessage(),
	})
	if err := shell.Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "render shell")
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	snap := s.feed.Current()
	if snap == nil {
		http.Error(w, "no content loaded", http.StatusServiceUnavailable)
		return
	}

	route := router.Resolve(r.PathValue("route"), snap)
	out, err := view.RenderRoute(route, snap)
	if err != nil {
		s.logger.Error(r.Context(), err, "render route", "route", route)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"route": route,
		"mount": out.Mount,
		"nav":   out.Nav,
		"title": out.Title,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	}
	if snap := s.feed.Current(); snap != nil {
		status["fingerprint"] = snap.Fingerprint
		status["articles"] = len(snap.Articles)
	} else {
		status["status"] = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	fmt.Fprint(w, siteCSS)
}

func localFeedPath(rawURL string) string {
	if strings.HasPrefix(rawURL, "file://") {
		return strings.TrimPrefix(rawURL, "file://")
	}
	if strings.HasPrefix(rawURL, "file:") {
		return strings.TrimPrefix(rawURL, "file:")
	}
	if !strings.Contains(rawURL, "://") {
		return rawURL
	}
	return ""
}

const siteCSS = `:root { color-scheme: light dark; font-family: Georgia, serif; }
body { margin: 0; }
nav ul.nav { display: flex; gap: 1rem; list-style: none; padding: 1rem; border-bottom: 1px solid #8884; flex-wrap: wrap; }
nav li.active a { font-weight: bold; text-decoration: none; }
main { max-width: 42rem; margin: 0 auto; padding: 1rem; }
.card { padding: 1rem 0; border-bottom: 1px solid #8884; }
.card-kicker, .kicker { text-transform: uppercase; font-size: 0.75rem; letter-spacing: 0.1em; }
.longform img.hero { width: 100%; height: auto; }
.widget svg { width: 100%; height: auto; color: #4a7; }
.degraded { padding: 2rem; border: 1px solid #c44; color: #c44; }
`
