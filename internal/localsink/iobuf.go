package localsink

import (
	"github.com/ehrlich-b/logsrvd/internal/iolog"
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// IoBuf implements spec.md §4.2's iobuf operation: open the stream file
// lazily, append one timing line and the raw bytes, then apply the
// random-drop test hook (spec.md §4.2, last paragraph). Elapsed time is
// advanced by the dispatcher after this call succeeds, not here.
func (s *Sink) IoBuf(ctx *sink.Context, msg wire.IoBuffer) bool {
	ctx.ClearErr()
	if s.files == nil {
		return ctx.SetErr("no I/O log open for this session")
	}

	w, err := s.files.StreamWriter(msg.Fd)
	if err != nil {
		logger.Error("localsink: failed to open stream file", "error", err)
		return ctx.SetErr("error writing IoBuffer")
	}
	if err := iolog.WriteDataLine(s.files.TimingFile(), msg.Fd, msg.Delay, len(msg.Data)); err != nil {
		logger.Error("localsink: failed to write timing line", "error", err)
		return ctx.SetErr("error writing IoBuffer")
	}
	if _, err := w.Write(msg.Data); err != nil {
		logger.Error("localsink: failed to write stream data", "error", err)
		return ctx.SetErr("error writing IoBuffer")
	}

	if s.randSource() < float64(s.cfg.RandomDropPercent) {
		logger.Debug("localsink: random-drop hook triggered, dropping IoBuffer silently")
		ctx.ErrStr = ""
		return false
	}
	return true
}

// WindowSize implements spec.md §4.2's winsize operation: append one timing
// line, touching only the timing file.
func (s *Sink) WindowSize(ctx *sink.Context, msg wire.WindowSize) bool {
	ctx.ClearErr()
	if s.files == nil {
		return ctx.SetErr("no I/O log open for this session")
	}
	if err := iolog.WriteWinsizeLine(s.files.TimingFile(), msg.Delay, msg.Rows, msg.Cols); err != nil {
		logger.Error("localsink: failed to write winsize line", "error", err)
		return ctx.SetErr("error writing WindowSize")
	}
	return true
}

// Suspend implements spec.md §4.2's suspend operation: append one timing
// line, touching only the timing file.
func (s *Sink) Suspend(ctx *sink.Context, msg wire.Suspend) bool {
	ctx.ClearErr()
	if s.files == nil {
		return ctx.SetErr("no I/O log open for this session")
	}
	if err := iolog.WriteSuspendLine(s.files.TimingFile(), msg.Delay, msg.Signal); err != nil {
		logger.Error("localsink: failed to write suspend line", "error", err)
		return ctx.SetErr("error writing CommandSuspend")
	}
	return true
}
