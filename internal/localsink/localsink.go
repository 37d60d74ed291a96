// Package localsink implements the local sink: accept/reject/alert records
// go through the event-log formatter, I/O chunks go through a per-session
// iolog.FileSet, and restart seeks (or, for compressed logs, rewrites) the
// existing on-disk state to resume at an exact elapsed-time target.
//
// Grounded in logsrvd_local.c's store_*_local functions and cms_local
// vtable, with file handling adapted from internal/egg/server.go's
// lazily-created, optionally-gzipped audit files.
package localsink

import (
	"math/rand"
	"path/filepath"

	"github.com/ehrlich-b/logsrvd/internal/config"
	"github.com/ehrlich-b/logsrvd/internal/eventlog"
	"github.com/ehrlich-b/logsrvd/internal/iolog"
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Sink is the local sink's concrete state: the I/O log file set (nil until
// accept/restart opens it) and the event-log writer every session shares.
type Sink struct {
	cfg    config.Config
	events eventlog.Writer

	files *iolog.FileSet
	// randSource lets tests make the random-drop hook deterministic.
	randSource func() float64
}

// New constructs a local sink bound to cfg and an event-log writer.
func New(cfg config.Config, events eventlog.Writer) *Sink {
	return &Sink{cfg: cfg, events: events, randSource: rand.Float64}
}

var _ sink.Sink = (*Sink)(nil)

func (s *Sink) Close() error {
	if s.files != nil {
		return s.files.Close()
	}
	return nil
}

func (s *Sink) Alert(ctx *sink.Context, msg wire.Alert) bool {
	ctx.ClearErr()
	rec, err := eventlog.Render("alert", msg.AlertTime, map[string]string{"reason": msg.Reason}, msg.Info)
	if err != nil {
		return ctx.SetErr("invalid info value in alert message")
	}
	if err := s.events.WriteRecord(rec); err != nil {
		logger.Warn("localsink: failed to write alert record", "error", err)
		return ctx.SetErr("error writing event log")
	}
	return true
}

func (s *Sink) iologDir(logID string) string {
	return filepath.Join(s.cfg.IologDir, logID)
}
