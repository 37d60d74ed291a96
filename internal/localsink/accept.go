package localsink

import (
	"fmt"
	"os"

	"github.com/ehrlich-b/logsrvd/internal/eventlog"
	"github.com/ehrlich-b/logsrvd/internal/iolog"
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/pathutil"
	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Accept implements spec.md §4.2's accept operation: render an "accept"
// event-log record, and if the client expects I/O buffers, create a fresh
// I/O log directory, assign it a log-id, and arm a LogId reply.
func (s *Sink) Accept(ctx *sink.Context, msg wire.Accept) bool {
	ctx.ClearErr()

	rec, err := eventlog.Render("accept", msg.SubmitTime, nil, msg.Info)
	if err != nil {
		return ctx.SetErr("invalid info value in accept message")
	}

	if msg.ExpectIoBufs {
		logID := pathutil.LogIDPath()
		dir := s.iologDir(logID)
		files, err := iolog.Create(dir, os.FileMode(s.cfg.IologDirMode), os.FileMode(s.cfg.IologMode), s.cfg.IologUID, s.cfg.IologGID, false)
		if err != nil {
			logger.Error("localsink: failed to create iolog dir", "dir", dir, "error", err)
			return ctx.SetErr("unable to create I/O log directory")
		}
		s.files = files
		ctx.LogID = logID
		ctx.ReplyPending = true

		if err := os.WriteFile(dir+"/log", []byte(rec.Format()+"\n"), 0600); err != nil {
			logger.Warn("localsink: failed to write iolog metadata", "error", err)
		}
	}

	if err := s.events.WriteRecord(rec); err != nil {
		logger.Warn("localsink: failed to write accept record", "error", err)
		return ctx.SetErr("error writing event log")
	}
	return true
}

// Reject implements spec.md §4.2's reject operation: same info parsing as
// accept, no I/O log ever created.
func (s *Sink) Reject(ctx *sink.Context, msg wire.Reject) bool {
	ctx.ClearErr()
	rec, err := eventlog.Render("reject", msg.RejectTime, map[string]string{"reason": msg.Reason}, msg.Info)
	if err != nil {
		return ctx.SetErr("invalid info value in reject message")
	}
	if err := s.events.WriteRecord(rec); err != nil {
		logger.Warn("localsink: failed to write reject record", "error", err)
		return ctx.SetErr("error writing event log")
	}
	return true
}

// Exit implements spec.md §4.2's exit operation: log the exit status, and
// if an I/O log exists, clear the timing file's write bits to mark it
// complete. A chmod failure is logged but does not fail the operation,
// matching logsrvd_local.c's store_exit_local.
func (s *Sink) Exit(ctx *sink.Context, msg wire.Exit) bool {
	ctx.ClearErr()

	var status string
	if msg.Signaled {
		status = fmt.Sprintf("killed by SIG%s", msg.Signal)
	} else {
		status = fmt.Sprintf("exit value %d", msg.ExitValue)
	}
	logger.Info("localsink: session exit", "status", status, "core_dumped", msg.CoreDumped)

	if s.files != nil {
		if err := pathutil.ClearWriteBits(s.files.DirFd, "timing", os.FileMode(s.cfg.IologMode)); err != nil {
			logger.Warn("localsink: failed to clear timing write bits on exit", "error", err)
		}
	}
	return true
}
