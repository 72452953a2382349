// Package server exposes workspaces over HTTP.
//
// # Routes
//
//	GET    /healthz                     liveness and build version
//	GET    /workspaces                  names of stored workspaces
//	POST   /workspaces/{name}           create an empty workspace
//	GET    /workspaces/{name}           current snapshot
//	DELETE /workspaces/{name}           delete a workspace
//	POST   /workspaces/{name}/ops       apply an operation (workspace.Request JSON)
//	GET    /workspaces/{name}/dot       Graphviz DOT source
//	GET    /workspaces/{name}/svg       rendered SVG
//	GET    /workspaces/{name}/text      boxes as plain text (?width=&height=)
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with
// a status derived from the error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/panetree/pkg/cache"
	perrors "github.com/matzehuels/panetree/pkg/errors"
	"github.com/matzehuels/panetree/pkg/layout"
	"github.com/matzehuels/panetree/pkg/observability"
	"github.com/matzehuels/panetree/pkg/store"
	"github.com/matzehuels/panetree/pkg/workspace"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Store persists workspaces. Defaults to a memory store.
	Store store.Store

	// Engine is shared by all workspaces. Defaults to UUID ids.
	Engine *layout.Engine

	// Cache memoizes SVG renders. Defaults to a bounded memory cache.
	Cache cache.Cache

	// Logger receives request logs. Defaults to a discarding logger.
	Logger *log.Logger

	// Orientation of the root of newly created workspaces.
	Orientation layout.Orientation
}

// Server serves the workspace API. Workspaces are opened lazily and kept
// for the lifetime of the server, so all requests for one name go through
// the same [workspace.Workspace] and are serialized by it.
type Server struct {
	opts   Options
	router chi.Router

	mu         sync.Mutex
	workspaces map[string]*workspace.Workspace
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Engine == nil {
		opts.Engine = layout.NewEngine(nil)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache(256)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s := &Server{opts: opts, workspaces: make(map[string]*workspace.Workspace)}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/workspaces", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Post("/", s.handleCreate)
			r.Delete("/", s.handleDelete)
			r.Post("/ops", s.handleOp)
			r.Get("/dot", s.handleDOT)
			r.Get("/svg", s.handleSVG)
			r.Get("/text", s.handleText)
		})
	})
	return r
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, path, status, time.Since(start))
		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// workspace returns the open workspace for name, opening it on first use.
func (s *Server) workspace(ctx context.Context, name string) (*workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[name]; ok {
		return ws, nil
	}
	ws, err := workspace.Open(ctx, name, s.wsOptions())
	if err != nil {
		return nil, err
	}
	s.workspaces[name] = ws
	return ws, nil
}

// existing is like workspace but reports WORKSPACE_NOT_FOUND for names
// that have never been written.
func (s *Server) existing(ctx context.Context, name string) (*workspace.Workspace, workspace.Snapshot, error) {
	ws, err := s.workspace(ctx, name)
	if err != nil {
		return nil, workspace.Snapshot{}, err
	}
	snap := ws.Snapshot()
	if snap.Version == 0 {
		return nil, snap, perrors.New(perrors.ErrCodeWorkspaceNotFound, "workspace %s not found", name)
	}
	return ws, snap, nil
}

func (s *Server) wsOptions() workspace.Options {
	return workspace.Options{
		Engine:      s.opts.Engine,
		Store:       s.opts.Store,
		Logger:      s.opts.Logger,
		Orientation: s.opts.Orientation,
	}
}

func (s *Server) forget(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, name)
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully,
// waiting at most shutdownTimeout for in-flight requests.
func Run(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
