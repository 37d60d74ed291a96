// Package sink declares the capability set both the local and journal
// sinks implement, and the per-connection Context the dispatcher threads
// through every call. Grounded in logsrvd_local.c/logsrvd_journal.c's
// cms_local/cms_journal function-pointer structs (declaration order:
// accept, reject, exit, restart, alert, iobuf, suspend, winsize) — kept here
// as a plain interface rather than a struct of func fields, since Go's
// method sets already give us the same dispatch-by-implementation without
// the extra indirection.
package sink

import (
	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Sink is the capability set a storage backend implements. Every operation
// reports success or failure; on failure the sink has already set ctx.ErrStr
// to a short, user-safe message, except for the local sink's random-drop
// hook, which fails with ctx.ErrStr left empty.
type Sink interface {
	Accept(ctx *Context, msg wire.Accept) bool
	Reject(ctx *Context, msg wire.Reject) bool
	Exit(ctx *Context, msg wire.Exit) bool
	Restart(ctx *Context, msg wire.Restart) bool
	Alert(ctx *Context, msg wire.Alert) bool
	IoBuf(ctx *Context, msg wire.IoBuffer) bool
	Suspend(ctx *Context, msg wire.Suspend) bool
	WindowSize(ctx *Context, msg wire.WindowSize) bool
	Close() error
}

// Context is the per-session state threaded through every sink call,
// per spec.md §3's "session context".
type Context struct {
	Elapsed  timeutil.Delay
	ErrStr   string
	LogID    string
	// ReplyPending is set true exactly once, when the active sink wants the
	// dispatcher to emit a LogId reply (spec.md §6 "Client reply").
	ReplyPending bool
	// RawMessage holds the original framed bytes for the message currently
	// being dispatched — spec.md §4.1's handle(message, raw_bytes, length,
	// ctx). Set by the dispatcher immediately before each sink call; the
	// journal sink is the only consumer, since it persists wire bytes
	// verbatim rather than re-deriving them from the decoded Payload.
	RawMessage []byte
}

// SetErr records a failure reason; ok is always false, letting callers
// write `return ctx.SetErr("...")`.
func (c *Context) SetErr(msg string) bool {
	c.ErrStr = msg
	return false
}

// ClearErr resets the error slot on a fresh successful call.
func (c *Context) ClearErr() {
	c.ErrStr = ""
}
