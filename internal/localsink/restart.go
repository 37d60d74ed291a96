package localsink

import (
	"os"

	"github.com/ehrlich-b/logsrvd/internal/iolog"
	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/pathutil"
	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Restart implements spec.md §4.2's restart operation. Decision on the
// Open Question about truncate-vs-interleave (DESIGN.md "Open Question
// Decisions"): neither store_restart_local nor iolog_seekto ever calls
// ftruncate, so this seeks each file to its resume-time position and
// leaves any stale tail bytes beyond the next write in place; subsequent
// writes overwrite positionally rather than truncating.
func (s *Sink) Restart(ctx *sink.Context, msg wire.Restart) bool {
	ctx.ClearErr()

	dir := s.iologDir(msg.LogID)
	files, err := iolog.Open(dir)
	if err != nil {
		logger.Warn("localsink: restart failed to open iolog dir", "dir", dir, "error", err)
		return ctx.SetErr("unable to open I/O log directory")
	}

	writable, err := pathutil.IsWritableByOwner(files.DirFd, "timing")
	if err != nil {
		files.Close()
		return ctx.SetErr("unable to stat timing file")
	}
	if !writable {
		files.Close()
		return ctx.SetErr("log is already complete, cannot be restarted")
	}

	if compressedFileSetExists(dir) {
		if err := s.rewriteToTarget(dir, msg.ResumePoint); err != nil {
			files.Close()
			logger.Warn("localsink: restart rewrite failed", "error", err)
			return ctx.SetErr("invalid journal file, unable to restart")
		}
		files2, err := iolog.Open(dir)
		if err != nil {
			return ctx.SetErr("unable to reopen I/O log directory after rewrite")
		}
		s.files = files2
		ctx.LogID = msg.LogID
		ctx.Elapsed = msg.ResumePoint
		return true
	}

	s.files = files
	ctx.LogID = msg.LogID

	if err := s.seekToTarget(msg.ResumePoint); err != nil {
		s.files.Close()
		s.files = nil
		return ctx.SetErr(err.Error())
	}
	ctx.Elapsed = msg.ResumePoint
	return true
}

// compressedFileSetExists reports whether dir contains any .gz stream file,
// the signal that restart must rewrite rather than seek (no random access
// into a gzip stream).
func compressedFileSetExists(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if len(e.Name()) > 3 && e.Name()[len(e.Name())-3:] == ".gz" {
			return true
		}
	}
	return false
}

// seekToTarget walks the timing file from the beginning, accumulating
// elapsed time and each stream's byte position, stopping exactly at target.
// Overshooting without an exact hit is the "invalid journal file, unable to
// restart" failure from spec.md §4.2 step 6.
func (s *Sink) seekToTarget(target timeutil.Delay) error {
	return seekTimingFile(s.files, target)
}
