// Package trigger decides when a generation request should run: only when
// its trigger counter differs from the last accepted one, and never while
// another generation is in flight.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
)

// DefaultFilename is used when a request names no output file
const DefaultFilename = "documento.pdf"

var (
	// ErrBusy is returned while another generation is running
	ErrBusy = errors.New("a generation is already in progress")
	// ErrUnchanged is returned when the trigger matches the last accepted one
	ErrUnchanged = errors.New("trigger unchanged")
)

// Request asks for one document
type Request struct {
	TriggerID int64  `json:"trigger_id"`
	Content   string `json:"content"`
	Filename  string `json:"filename,omitempty"`
}

// OutputName returns the base name of Filename, or DefaultFilename
func (r Request) OutputName() string {
	name := strings.TrimSpace(r.Filename)
	if name == "" {
		return DefaultFilename
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return DefaultFilename
	}
	return name
}

// Status is a snapshot of the gate
type Status struct {
	Processing   bool   `json:"processing"`
	LastTrigger  int64  `json:"last_trigger"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Gate admits at most one generation at a time
type Gate struct {
	mu         sync.Mutex
	last       int64
	processing bool
	errMsg     string
	logger     *slog.Logger
}

// NewGate creates a gate whose last accepted trigger is zero
func NewGate(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{logger: logger}
}

// Begin admits req or refuses it. On success the trigger is recorded before
// any work starts and the gate is busy until Finish.
func (g *Gate) Begin(req Request) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if req.TriggerID == g.last {
		return ErrUnchanged
	}
	if g.processing {
		return ErrBusy
	}
	g.last = req.TriggerID
	g.processing = true
	g.errMsg = ""
	g.logger.Debug("generation admitted", "trigger", req.TriggerID, "filename", req.OutputName())
	return nil
}

// Finish releases the gate and records err as the last error message
func (g *Gate) Finish(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.processing = false
	g.errMsg = ""
	if err != nil {
		g.errMsg = err.Error()
	}
}

// Run admits req and calls fn with it, releasing the gate afterwards. A
// panic in fn releases the gate with the panic as its error and is then
// re-raised.
func (g *Gate) Run(ctx context.Context, req Request, fn func(context.Context, Request) error) (err error) {
	if err := g.Begin(req); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			g.Finish(fmt.Errorf("generation panicked: %v", r))
			g.logger.Error("generation panicked", "trigger", req.TriggerID, "panic", r)
			panic(r)
		}
	}()

	err = fn(ctx, req)
	g.Finish(err)
	if err != nil {
		g.logger.Error("generation failed", "trigger", req.TriggerID, "error", err)
	}
	return err
}

// Status returns the current state
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{Processing: g.processing, LastTrigger: g.last, ErrorMessage: g.errMsg}
}
