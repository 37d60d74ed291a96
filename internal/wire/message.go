// Package wire defines the decoded shapes of the eight client message
// variants the dispatcher routes. Decoding raw protocol bytes into these
// shapes is treated as an external codec concern (see internal/frontend);
// this package only carries the result plus the original bytes a journal
// sink needs to reproduce verbatim.
package wire

import "github.com/ehrlich-b/logsrvd/internal/timeutil"

// IoFd identifies which captured stream a data record belongs to. The
// numeric ordering of the first five must match the protocol's event-kind
// ordering used in timing records.
type IoFd int

const (
	IoFdTTYIn IoFd = iota
	IoFdTTYOut
	IoFdStdin
	IoFdStdout
	IoFdStderr
	IoFdTiming
)

// TimingKind is the leading integer on a timing-file line. Data streams use
// their IoFd slot number; winsize and suspend use fixed values distinct from
// any IoFd.
type TimingKind int

const (
	TimingWinsize TimingKind = 100
	TimingSuspend TimingKind = 101
)

func (k IoFd) TimingKind() TimingKind { return TimingKind(k) }

// InfoValueKind distinguishes the three recognized info-entry shapes.
type InfoValueKind int

const (
	InfoNumber InfoValueKind = iota
	InfoString
	InfoStringList
)

// InfoValue is one entry of an Accept/Reject/Alert message's info block.
type InfoValue struct {
	Key       string
	Kind      InfoValueKind
	Number    int64
	Str       string
	StrList   []string
}

// Accept authorizes a command and carries its metadata.
type Accept struct {
	SubmitTime   timeutil.Delay
	ExpectIoBufs bool
	Info         []InfoValue
}

// Reject refuses a command.
type Reject struct {
	RejectTime timeutil.Delay
	Reason     string
	Info       []InfoValue
}

// Exit reports how the session's command terminated.
type Exit struct {
	ExitValue  int32
	Signaled   bool
	Signal     string
	CoreDumped bool
}

// Restart asks the sink to resume a previously staged session at ResumePoint.
type Restart struct {
	LogID      string
	ResumePoint timeutil.Delay
}

// Alert reports an out-of-band condition at AlertTime.
type Alert struct {
	AlertTime timeutil.Delay
	Reason    string
	Info      []InfoValue
}

// IoBuffer is one captured chunk of I/O on stream Fd, Delay (seconds plus
// nanoseconds) after the previous timing event.
type IoBuffer struct {
	Fd    IoFd
	Delay timeutil.Delay
	Data  []byte
}

// Suspend records that the session's command caught Signal.
type Suspend struct {
	Delay  timeutil.Delay
	Signal string
}

// WindowSize records a terminal resize to Rows x Cols.
type WindowSize struct {
	Delay timeutil.Delay
	Rows  uint16
	Cols  uint16
}

// Timed is implemented by the three variants whose delay advances the
// session's elapsed time.
type Timed interface {
	GetDelay() timeutil.Delay
}

func (m IoBuffer) GetDelay() timeutil.Delay   { return m.Delay }
func (m Suspend) GetDelay() timeutil.Delay    { return m.Delay }
func (m WindowSize) GetDelay() timeutil.Delay { return m.Delay }

// Payload is implemented by every message variant; it is a marker method
// only, since Go has no sealed-interface construct. Use a type switch on the
// dispatcher side to recover the concrete variant.
type Payload interface {
	isPayload()
}

func (Accept) isPayload()     {}
func (Reject) isPayload()     {}
func (Exit) isPayload()       {}
func (Restart) isPayload()    {}
func (Alert) isPayload()      {}
func (IoBuffer) isPayload()   {}
func (Suspend) isPayload()    {}
func (WindowSize) isPayload() {}

// ClientMessage pairs a decoded Payload with the original framed bytes the
// journal sink persists verbatim.
type ClientMessage struct {
	Payload Payload
	Raw     []byte
}
