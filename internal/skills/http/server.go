package http

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"skillscatalog.shikanime.studio/internal/config"
	"skillscatalog.shikanime.studio/internal/skills"
)

// Catalog is what the server drives.
type Catalog interface {
	Refresh(ctx context.Context, out io.Writer) ([]skills.Record, error)
	List(ctx context.Context, category string, limit int) ([]skills.Record, error)
	Ping(ctx context.Context) error
}

// Server exposes the scrape trigger, the published records and health checks.
type Server struct {
	catalog Catalog
	secret  string
	mux     *stdhttp.ServeMux
	running sync.Mutex
	now     func() time.Time
}

// NewServer mounts the handlers. An empty secret leaves the scrape trigger open.
func NewServer(catalog Catalog, secret string) *Server {
	s := &Server{
		catalog: catalog,
		secret:  secret,
		mux:     stdhttp.NewServeMux(),
		now:     time.Now,
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.HandleFunc("GET /api/scrape", s.handleScrape)
	s.mux.HandleFunc("POST /api/scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/skills", s.handleSkills)
	return s
}

// NewServerForConfig builds the catalog from cfg and returns a configured Server.
func NewServerForConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	c, err := skills.NewForConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewServer(c, cfg.GetCronSecret()), nil
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() stdhttp.Handler {
	return otelhttp.NewHandler(s.mux, "http.server")
}

// Close releases the catalog resources.
func (s *Server) Close() error {
	if c, ok := s.catalog.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &stdhttp.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	writeJSON(w, stdhttp.StatusOK, map[string]any{"status": "ok", "service": "skillscatalog"})
}

func (s *Server) handleReady(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	tracer := otel.Tracer("skillscatalog/http")
	ctx, span := tracer.Start(r.Context(), "Server.Ready")
	defer span.End()
	if err := s.catalog.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "readiness check failed", "error", err)
		writeJSON(w, stdhttp.StatusServiceUnavailable, map[string]any{"status": "unavailable", "message": err.Error()})
		return
	}
	writeJSON(w, stdhttp.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) authorized(r *stdhttp.Request) bool {
	if s.secret == "" {
		return true
	}
	want := "Bearer " + s.secret
	got := r.Header.Get("Authorization")
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (s *Server) handleScrape(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if !s.authorized(r) {
		writeJSON(w, stdhttp.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return
	}
	if !s.running.TryLock() {
		writeJSON(w, stdhttp.StatusConflict, map[string]any{
			"error":     "Scraping already in progress",
			"timestamp": s.timestamp(),
		})
		return
	}
	defer s.running.Unlock()

	tracer := otel.Tracer("skillscatalog/http")
	ctx, span := tracer.Start(context.WithoutCancel(r.Context()), "Server.Scrape")
	defer span.End()

	slog.InfoContext(ctx, "scrape started")
	var out bytes.Buffer
	records, err := s.catalog.Refresh(ctx, &out)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "scrape failed", "error", err)
		writeJSON(w, stdhttp.StatusInternalServerError, map[string]any{
			"error":     "Scraping failed",
			"message":   err.Error(),
			"output":    out.String(),
			"timestamp": s.timestamp(),
		})
		return
	}
	span.SetAttributes(attribute.Int("records_len", len(records)))
	slog.InfoContext(ctx, "scrape completed", "count", len(records))
	writeJSON(w, stdhttp.StatusOK, map[string]any{
		"success":   true,
		"message":   "Scraping completed successfully",
		"count":     len(records),
		"output":    out.String(),
		"timestamp": s.timestamp(),
	})
}

func (s *Server) handleSkills(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, stdhttp.StatusBadRequest, map[string]any{"error": "invalid limit"})
			return
		}
		limit = n
	}
	records, err := s.catalog.List(r.Context(), q.Get("category"), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "list skills failed", "error", err)
		writeJSON(w, stdhttp.StatusInternalServerError, map[string]any{"error": "Listing failed", "message": err.Error()})
		return
	}
	if records == nil {
		records = []skills.Record{}
	}
	writeJSON(w, stdhttp.StatusOK, records)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
