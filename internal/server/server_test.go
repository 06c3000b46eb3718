package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gompdf/slicepdf/internal/config"
	"github.com/gompdf/slicepdf/internal/trigger"
	"github.com/gompdf/slicepdf/pkg/api"
	pdflib "github.com/ledongthuc/pdf"
)

func newTestServer(cfg config.Config) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	cfg.GenerateTimeout = time.Minute
	converter := api.New(
		api.WithPageSize(220, 300),
		api.WithMargin(10),
		api.WithDPI(25.4),
		api.WithRasterScale(4),
		api.WithLogger(log),
	)
	return NewServer(converter, log, cfg)
}

func post(t *testing.T, s *Server, req trigger.Request) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pdf", bytes.NewReader(body)))
	return rec
}

func status(t *testing.T, s *Server) trigger.Status {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint returned %d", rec.Code)
	}
	var st trigger.Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestHealth(t *testing.T) {
	s := newTestServer(config.Config{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate(t *testing.T) {
	s := newTestServer(config.Config{})

	rec := post(t, s, trigger.Request{
		TriggerID: 1,
		Content:   `<div style="height: 200px"></div><div class="pdf-section" style="height: 100px"></div><div style="height: 100px"></div>`,
		Filename:  "reports/monthly.pdf",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=monthly.pdf` {
		t.Errorf("content disposition = %q", cd)
	}

	data := rec.Body.Bytes()
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	// the section at rows [800,1200) would cross the 1000 px page end, so it moves to page 2
	if n := r.NumPage(); n != 2 || rec.Header().Get("X-Page-Count") != "2" {
		t.Errorf("pages = %d, header %q", n, rec.Header().Get("X-Page-Count"))
	}

	st := status(t, s)
	if st.Processing || st.LastTrigger != 1 || st.ErrorMessage != "" {
		t.Errorf("status = %+v", st)
	}
}

func TestGenerate_DefaultFilename(t *testing.T) {
	s := newTestServer(config.Config{})
	rec := post(t, s, trigger.Request{TriggerID: 5, Content: "<p>hi</p>"})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, trigger.DefaultFilename) {
		t.Errorf("content disposition = %q", cd)
	}
}

func TestGenerate_Refusals(t *testing.T) {
	s := newTestServer(config.Config{})

	if rec := post(t, s, trigger.Request{TriggerID: 0, Content: "<p>x</p>"}); rec.Code != http.StatusConflict {
		t.Errorf("initial trigger: got %d, want 409", rec.Code)
	}

	if rec := post(t, s, trigger.Request{TriggerID: 2, Content: "   "}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty content: got %d, want 400", rec.Code)
	}
	st := status(t, s)
	if st.LastTrigger != 2 || st.ErrorMessage == "" || st.Processing {
		t.Errorf("status after failure = %+v", st)
	}
	if rec := post(t, s, trigger.Request{TriggerID: 2, Content: "<p>x</p>"}); rec.Code != http.StatusConflict {
		t.Errorf("repeated trigger: got %d, want 409", rec.Code)
	}

	if err := s.gate.Begin(trigger.Request{TriggerID: 10}); err != nil {
		t.Fatal(err)
	}
	if rec := post(t, s, trigger.Request{TriggerID: 11, Content: "<p>x</p>"}); rec.Code != http.StatusConflict {
		t.Errorf("busy: got %d, want 409", rec.Code)
	}
	if !status(t, s).Processing {
		t.Error("status should report processing")
	}
	s.gate.Finish(nil)

	if rec := post(t, s, trigger.Request{TriggerID: 11, Content: "<p>x</p>"}); rec.Code != http.StatusOK {
		t.Errorf("after finish: got %d, want 200", rec.Code)
	}
}

func TestGenerate_BadBody(t *testing.T) {
	s := newTestServer(config.Config{MaxBodyBytes: 64})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/pdf", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed json: got %d", rec.Code)
	}

	rec = post(t, s, trigger.Request{TriggerID: 1, Content: strings.Repeat("<p>x</p>", 50)})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized body: got %d", rec.Code)
	}
	if status(t, s).LastTrigger != 0 {
		t.Error("rejected bodies must not consume a trigger")
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(config.Config{APIKey: "secret"})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d", rec.Code, tt.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health should stay public, got %d", rec.Code)
	}
}
