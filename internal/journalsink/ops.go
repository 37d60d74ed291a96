package journalsink

import (
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Accept implements spec.md §4.3: create the journal, write one frame, and
// if the client expects I/O buffers, use the journal path as the log-id.
func (s *Sink) Accept(ctx *sink.Context, msg wire.Accept) bool {
	ctx.ClearErr()
	if !s.createJournal() {
		return ctx.SetErr("unable to create/lock journal file")
	}
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write accept frame", "error", err)
		return ctx.SetErr("unable to create/lock journal file")
	}
	if msg.ExpectIoBufs {
		ctx.LogID = s.relPath()
		ctx.ReplyPending = true
	}
	return true
}

// Reject implements spec.md §4.3: create the journal, write one frame, no
// reply.
func (s *Sink) Reject(ctx *sink.Context, msg wire.Reject) bool {
	ctx.ClearErr()
	if !s.createJournal() {
		return ctx.SetErr("unable to create/lock journal file")
	}
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write reject frame", "error", err)
		return ctx.SetErr("unable to create/lock journal file")
	}
	return true
}

// Alert writes one frame containing the raw bytes as received.
func (s *Sink) Alert(ctx *sink.Context, msg wire.Alert) bool {
	ctx.ClearErr()
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write alert frame", "error", err)
		return ctx.SetErr("error writing journal frame")
	}
	return true
}

// IoBuf writes one frame. Elapsed time is advanced by the dispatcher after
// this call succeeds, not here.
func (s *Sink) IoBuf(ctx *sink.Context, msg wire.IoBuffer) bool {
	ctx.ClearErr()
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write iobuf frame", "error", err)
		return ctx.SetErr("error writing journal frame")
	}
	return true
}

// Suspend writes one frame.
func (s *Sink) Suspend(ctx *sink.Context, msg wire.Suspend) bool {
	ctx.ClearErr()
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write suspend frame", "error", err)
		return ctx.SetErr("error writing journal frame")
	}
	return true
}

// WindowSize writes one frame.
func (s *Sink) WindowSize(ctx *sink.Context, msg wire.WindowSize) bool {
	ctx.ClearErr()
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write winsize frame", "error", err)
		return ctx.SetErr("error writing journal frame")
	}
	return true
}

// Exit writes the final frame, then finishes the journal (flush, rename
// incoming -> outgoing).
func (s *Sink) Exit(ctx *sink.Context, msg wire.Exit) bool {
	ctx.ClearErr()
	if err := s.writeFrame(ctx.RawMessage); err != nil {
		logger.Error("journalsink: failed to write exit frame", "error", err)
		return ctx.SetErr("error writing journal frame")
	}
	if err := s.finish(); err != nil {
		logger.Error("journalsink: failed to finish journal", "error", err)
		return ctx.SetErr("unable to finalize journal file")
	}
	ctx.LogID = s.relPath()
	return true
}

// relPath reports the journal's path as "<prefix>/<name>", the log-id
// shape a restart request echoes back (see restart.go's stripHostname).
func (s *Sink) relPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefix + "/" + s.name
}
