package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lintsuppress/internal/model"
	"lintsuppress/internal/patch"
)

//go:embed static/*
var staticFS embed.FS

//go:embed help.md
var helpMD string

// Lines of context returned around a directive by default.
const defaultRadius = 8

const shutdownTimeout = 5 * time.Second

// Server exposes a suppression plan over HTTP.
type Server struct {
	patcher *patch.Patcher
	logger  *zap.Logger

	mu      sync.Mutex
	plan    *model.Plan
	applied map[string]bool
}

// NewServer creates a Server for p.
func NewServer(p *patch.Patcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{patcher: p, logger: logger, applied: make(map[string]bool)}
}

// Handler returns the routes.
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// Serve static files
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(subFS)))

	// API Endpoints
	mux.HandleFunc("/api/plan", s.handlePlan)
	mux.HandleFunc("/api/line-context", s.handleLineContext)
	mux.HandleFunc("/api/apply", s.handleApply)
	mux.HandleFunc("/api/help", handleHelp)
	return mux, nil
}

// StartServer serves on addr until ctx is done or the listener fails.
// Requests in flight get shutdownTimeout to finish.
func StartServer(ctx context.Context, addr string, p *patch.Patcher, logger *zap.Logger) error {
	s := NewServer(p, logger)
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	fmt.Printf("Starting lintsuppress web server at http://%s\n", displayAddr(addr))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down web server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Web server stopped", zap.String("addr", addr))
	return nil
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// currentPlan returns the cached plan, running the linter on first use or
// when refresh is set. Callers hold s.mu.
func (s *Server) currentPlan(ctx context.Context, refresh bool) (model.Plan, error) {
	if s.plan != nil && !refresh {
		return *s.plan, nil
	}
	plan, err := s.patcher.Plan(ctx)
	if err != nil {
		return model.Plan{}, err
	}
	s.plan = &plan
	s.applied = make(map[string]bool)
	return plan, nil
}

type fixView struct {
	model.Fix
	Icon    string
	Applied bool
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.currentPlan(r.Context(), r.URL.Query().Get("refresh") != "")
	if err != nil {
		s.logger.Warn("Planning failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fixes := make([]fixView, 0, len(plan.Fixes))
	for _, f := range plan.Fixes {
		icon := model.FixIcon(f)
		if s.applied[f.Path] {
			icon = model.IconApplied
		}
		fixes = append(fixes, fixView{Fix: f, Icon: icon, Applied: s.applied[f.Path]})
	}

	response := struct {
		Fixes       []fixView
		Diagnostics int
		Report      string
		Version     string
	}{
		Fixes:       fixes,
		Diagnostics: plan.Diagnostics,
		Report:      patch.GenerateReport(plan, true),
		Version:     model.Version,
	}
	writeJSON(w, response)
}

// handleLineContext serves the planned content of a flagged file. Only paths
// in the plan are readable.
func (s *Server) handleLineContext(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	var fix model.Fix
	ok := false
	if s.plan != nil {
		fix, ok = s.plan.Find(path)
	}
	s.mu.Unlock()
	if !ok {
		http.Error(w, "path is not in the plan", http.StatusNotFound)
		return
	}

	line := fix.Line
	if v := r.URL.Query().Get("line"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid line number", http.StatusBadRequest)
			return
		}
		line = n
	}
	radius := defaultRadius
	if v := r.URL.Query().Get("radius"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid radius", http.StatusBadRequest)
			return
		}
		radius = n
	}

	writeJSON(w, model.GetLineContext(fix.Lines, line, radius))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		http.Error(w, "no plan yet, GET /api/plan first", http.StatusConflict)
		return
	}

	pending := model.Plan{Diagnostics: s.plan.Diagnostics}
	for _, f := range s.plan.Changed() {
		if !s.applied[f.Path] {
			pending.Fixes = append(pending.Fixes, f)
		}
	}

	applied, err := s.patcher.Apply(r.Context(), pending)
	for _, f := range applied {
		s.applied[f.Path] = true
	}

	response := struct {
		Applied []model.Fix
		Error   string `json:",omitempty"`
	}{Applied: applied}
	if err != nil {
		s.logger.Warn("Apply failed", zap.Error(err), zap.Int("written", len(applied)))
		response.Error = err.Error()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
	}
	writeJSON(w, response)
}

func handleHelp(w http.ResponseWriter, r *http.Request) {
	text := strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)

	w.Header().Set("Content-Type", "text/markdown")
	w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	json.NewEncoder(w).Encode(v)
}
