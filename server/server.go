// Package server exposes layout over HTTP.
//
//	POST /api/layout            graph in, positioned graph JSON out
//	POST /api/render?format=svg graph in, rendered layout out
//	GET  /healthz
//
// Request bodies are JSON graphs, or CSV edge lists when sent as text/csv.
// The steps and parallel query parameters override the configured
// animation bounds and backend for a single request.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/layout"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/render"
)

// maxRequestSteps caps the steps query parameter.
const maxRequestSteps = 10000

// Server handles layout requests. All requests share one worker factory, so
// the worker bound applies server-wide and excess requests run inline.
type Server struct {
	cfg     config.Config
	logger  *log.Logger
	factory *layout.WorkerFactory
	router  chi.Router
}

// New creates a server for cfg.
func New(cfg config.Config, logger *log.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		factory: cfg.Worker.WorkerFactory(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, res, err := s.layoutRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := render.Render(g, &render.OutputOptions{Format: "json"})
	if err != nil {
		s.writeError(w, err)
		return
	}
	setLayoutHeaders(w, res)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if _, err := render.GetRenderer(format); err != nil {
		s.writeError(w, err)
		return
	}

	g, res, err := s.layoutRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.renderOptions(g, format)
	out, err := render.Render(g, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	setLayoutHeaders(w, res)
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// layoutRequest decodes the body and runs the layout to completion.
func (s *Server) layoutRequest(r *http.Request) (*models.Graph, layout.Result, error) {
	var res layout.Result

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, res, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", s.cfg.Server.MaxBodyBytes)
		}
		return nil, res, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}

	format := "json"
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		format = "csv"
	}
	sim := s.cfg.Simulation
	p, err := ingest.GetProcessor(format, ingest.Options{Width: sim.Width, Height: sim.Height, Seed: sim.Seed})
	if err != nil {
		return nil, res, err
	}
	g, err := p.ProcessData(body)
	if err != nil {
		return nil, res, err
	}
	if limit := s.cfg.Server.MaxNodes; limit > 0 && len(g.Nodes) > limit {
		return nil, res, errors.New(errors.ErrCodeInvalidInput, "graph has %d nodes, limit is %d", len(g.Nodes), limit)
	}

	opts, err := s.runOptions(r)
	if err != nil {
		return nil, res, err
	}
	res, err = layout.Run(r.Context(), g, opts)
	if err != nil {
		return nil, res, errors.Wrap(errors.ErrCodeUnavailable, err, "layout interrupted")
	}
	s.logger.Debug("layout finished", "nodes", len(g.Nodes), "steps", res.Steps, "parallel", res.Parallel, "elapsed", res.Elapsed)
	return g, res, nil
}

func (s *Server) runOptions(r *http.Request) (layout.RunOptions, error) {
	opts := layout.RunOptions{
		Config:    s.cfg.Simulation,
		Parallel:  s.cfg.Worker.Parallel,
		Factory:   s.factory,
		Scheduler: layout.ImmediateScheduler{},
		Animation: s.cfg.Animation.AnimatorOptions(),
		Logger:    s.logger,
	}

	q := r.URL.Query()
	if v := q.Get("steps"); v != "" {
		steps, err := strconv.Atoi(v)
		if err != nil || steps < 1 || steps > maxRequestSteps {
			return opts, errors.New(errors.ErrCodeInvalidInput, "steps must be between 1 and %d", maxRequestSteps)
		}
		opts.Animation.MaxSteps = steps
	}
	if v := q.Get("parallel"); v != "" {
		parallel, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "parallel must be a boolean, got %q", v)
		}
		opts.Parallel = parallel
	}
	return opts, nil
}

func (s *Server) renderOptions(g *models.Graph, format string) *render.OutputOptions {
	opts := render.NewDefaultOptions(format)
	rc := s.cfg.Render
	opts.Padding = rc.Padding
	opts.ShowLabels = rc.Labels
	opts.Columns, opts.Rows = rc.Columns, rc.Rows
	opts.Background = rc.Background
	if g.Background != "" {
		opts.Background = g.Background
	}
	if g.Width > 0 && g.Height > 0 {
		opts.Width, opts.Height = g.Width, g.Height
	}
	return opts
}

func setLayoutHeaders(w http.ResponseWriter, res layout.Result) {
	w.Header().Set("X-Layout-Steps", strconv.Itoa(res.Steps))
	w.Header().Set("X-Layout-Parallel", strconv.FormatBool(res.Parallel))
}

func contentType(format string) string {
	switch strings.ToLower(format) {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "json":
		return "application/json"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
