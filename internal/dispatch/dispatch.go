// Package dispatch implements the session-scoped message dispatcher:
// spec.md §4.1's handle(message, raw_bytes, length, ctx), routing each
// decoded message to the active sink and maintaining cumulative elapsed
// time after a successful call.
package dispatch

import (
	"fmt"

	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/sink"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Dispatcher routes decoded messages to sink and owns the session Context.
type Dispatcher struct {
	Sink sink.Sink
	Ctx  *sink.Context

	// started/terminal track the ordering rules spec.md §4.1 assumes are
	// enforced above the sink layer; this dispatcher enforces them too,
	// since doing so costs little and catches protocol bugs early.
	started  bool
	terminal bool
}

// New constructs a dispatcher driving s, with a fresh session context.
func New(s sink.Sink) *Dispatcher {
	return &Dispatcher{Sink: s, Ctx: &sink.Context{}}
}

// Handle implements spec.md §4.1. msg.Raw is the original framed bytes
// (needed by the journal sink); it is threaded through ctx.RawMessage for the
// duration of this call only.
func (d *Dispatcher) Handle(msg wire.ClientMessage) error {
	if d.terminal {
		return fmt.Errorf("dispatch: session already terminated")
	}

	d.Ctx.RawMessage = msg.Raw
	defer func() { d.Ctx.RawMessage = nil }()

	var ok bool

	switch p := msg.Payload.(type) {
	case wire.Accept:
		if d.started {
			return fmt.Errorf("dispatch: Accept arrived after session start")
		}
		d.started = true
		ok = d.Sink.Accept(d.Ctx, p)
	case wire.Reject:
		if d.started {
			return fmt.Errorf("dispatch: Reject arrived after session start")
		}
		d.started = true
		d.terminal = true
		ok = d.Sink.Reject(d.Ctx, p)
	case wire.Restart:
		if d.started {
			return fmt.Errorf("dispatch: Restart arrived after session start")
		}
		d.started = true
		ok = d.Sink.Restart(d.Ctx, p)
	case wire.Exit:
		d.terminal = true
		ok = d.Sink.Exit(d.Ctx, p)
	case wire.Alert:
		ok = d.Sink.Alert(d.Ctx, p)
	case wire.IoBuffer:
		ok = d.Sink.IoBuf(d.Ctx, p)
		if ok {
			d.Ctx.Elapsed = d.Ctx.Elapsed.Add(p.Delay)
		}
	case wire.Suspend:
		ok = d.Sink.Suspend(d.Ctx, p)
		if ok {
			d.Ctx.Elapsed = d.Ctx.Elapsed.Add(p.Delay)
		}
	case wire.WindowSize:
		ok = d.Sink.WindowSize(d.Ctx, p)
		if ok {
			d.Ctx.Elapsed = d.Ctx.Elapsed.Add(p.Delay)
		}
	default:
		return fmt.Errorf("dispatch: unrecognized message payload %T", msg.Payload)
	}

	if !ok {
		if d.Ctx.ErrStr != "" {
			logger.Warn("dispatch: sink operation failed", "error", d.Ctx.ErrStr)
			return fmt.Errorf("%s", d.Ctx.ErrStr)
		}
		logger.Debug("dispatch: sink operation failed silently (random-drop)")
		return nil
	}
	return nil
}

// Close releases the active sink's resources.
func (d *Dispatcher) Close() error {
	return d.Sink.Close()
}
