package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gompdf/slicepdf/internal/config"
	"github.com/gompdf/slicepdf/internal/trigger"
	"github.com/gompdf/slicepdf/pkg/api"
)

// Server is the HTTP API for PDF generation.
type Server struct {
	router    chi.Router
	converter *api.Converter
	gate      *trigger.Gate
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(converter *api.Converter, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		converter: converter,
		gate:      trigger.NewGate(log),
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/status", s.handleStatus)
		r.Post("/api/pdf", s.handleGenerate)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.gate.Status())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req trigger.Request
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var doc *api.Document
	err := s.gate.Run(r.Context(), req, func(ctx context.Context, req trigger.Request) error {
		if s.cfg.GenerateTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerateTimeout)
			defer cancel()
		}
		var err error
		doc, err = s.converter.Generate(ctx, req.Content)
		return err
	})
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	s.log.Info("pdf served",
		"request_id", middleware.GetReqID(r.Context()),
		"trigger", req.TriggerID,
		"filename", req.OutputName(),
		"pages", doc.Pages(),
	)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": req.OutputName()}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Page-Count", strconv.Itoa(doc.Pages()))
	w.Write(doc.Data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, trigger.ErrBusy), errors.Is(err, trigger.ErrUnchanged):
		return http.StatusConflict
	case errors.Is(err, api.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
