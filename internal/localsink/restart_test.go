package localsink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// TestRestartSeeksToExactTargetAndResumesWrites covers spec.md's scenario
// D shape: a session is accepted, writes two chunks, then a fresh sink
// restarts at the exact elapsed point of the first chunk and a further
// write lands positionally rather than appending past stale bytes (OQ1).
func TestRestartSeeksToExactTargetAndResumesWrites(t *testing.T) {
	s, _ := newTestSink(t)
	ctx := &sink.Context{}

	s.Accept(ctx, wire.Accept{SubmitTime: timeutil.Delay{}, ExpectIoBufs: true})
	logID := ctx.LogID

	first := wire.IoBuffer{Fd: wire.IoFdStdout, Delay: timeutil.Delay{Nsec: 100_000_000}, Data: []byte("AAAAA")}
	if !s.IoBuf(ctx, first) {
		t.Fatalf("first IoBuf failed: %s", ctx.ErrStr)
	}
	second := wire.IoBuffer{Fd: wire.IoFdStdout, Delay: timeutil.Delay{Nsec: 100_000_000}, Data: []byte("BBBBB")}
	if !s.IoBuf(ctx, second) {
		t.Fatalf("second IoBuf failed: %s", ctx.ErrStr)
	}
	s.Close()

	restarted := New(s.cfg, &memEvents{})
	rctx := &sink.Context{}
	restart := wire.Restart{LogID: logID, ResumePoint: timeutil.Delay{Nsec: 100_000_000}}
	if !restarted.Restart(rctx, restart) {
		t.Fatalf("Restart failed: %s", rctx.ErrStr)
	}
	if rctx.Elapsed != (timeutil.Delay{Nsec: 100_000_000}) {
		t.Fatalf("got elapsed %+v", rctx.Elapsed)
	}

	resumed := wire.IoBuffer{Fd: wire.IoFdStdout, Delay: timeutil.Delay{Nsec: 50_000_000}, Data: []byte("XX")}
	if !restarted.IoBuf(rctx, resumed) {
		t.Fatalf("resumed IoBuf failed: %s", rctx.ErrStr)
	}
	restarted.Close()

	data, err := os.ReadFile(filepath.Join(s.cfg.IologDir, logID, "stdout"))
	if err != nil {
		t.Fatalf("ReadFile stdout: %v", err)
	}
	if string(data) != "AAAAAXXBBB" {
		t.Fatalf("got %q, want positional overwrite leaving stale tail", data)
	}
}

// TestRestartAtNonExactTargetFails covers the overshoot failure path: a
// resume point that doesn't land exactly on a timing-record boundary is
// rejected rather than silently rounded.
func TestRestartAtNonExactTargetFails(t *testing.T) {
	s, _ := newTestSink(t)
	ctx := &sink.Context{}

	s.Accept(ctx, wire.Accept{SubmitTime: timeutil.Delay{}, ExpectIoBufs: true})
	logID := ctx.LogID
	s.IoBuf(ctx, wire.IoBuffer{Fd: wire.IoFdStdout, Delay: timeutil.Delay{Nsec: 100_000_000}, Data: []byte("A")})
	s.Close()

	restarted := New(s.cfg, &memEvents{})
	rctx := &sink.Context{}
	restart := wire.Restart{LogID: logID, ResumePoint: timeutil.Delay{Nsec: 50_000_000}}
	if restarted.Restart(rctx, restart) {
		t.Fatalf("expected restart at non-exact target to fail")
	}
}
