// Package journalsink implements the journal sink: raw wire messages are
// serialized verbatim into a length-prefixed append-only file staged under
// <relay-dir>/incoming/, then atomically renamed to <relay-dir>/outgoing/
// when the session ends. Restart replays the staged file forward to find
// the resume point.
//
// Grounded in logsrvd_journal.c's journal_create/journal_write/
// journal_finish/journal_restart/journal_seek and the cms_journal vtable.
package journalsink

import (
	"os"
	"sync"

	"github.com/ehrlich-b/logsrvd/internal/config"
	"github.com/ehrlich-b/logsrvd/internal/pathutil"
	"github.com/ehrlich-b/logsrvd/internal/sink"
)

// Sink is the journal sink's concrete state.
type Sink struct {
	cfg    config.Config
	prefix string // the incoming/<prefix>/ directory segment; the submitting host in the original

	mu   sync.Mutex
	file *os.File
	name string // current filename within its directory (incoming or outgoing)
	path string // full current path, updated in place by finish

	buf []byte // replay growth buffer, high-water mark persists across frames
}

// New constructs a journal sink bound to cfg, staging files under
// <relay-dir>/incoming/<prefix>/.
func New(cfg config.Config, prefix string) *Sink {
	if prefix == "" {
		if h, err := os.Hostname(); err == nil {
			prefix = h
		} else {
			prefix = "local"
		}
	}
	return &Sink{cfg: cfg, prefix: prefix}
}

var _ sink.Sink = (*Sink)(nil)

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	fd := int(s.file.Fd())
	_ = pathutil.Unflock(fd)
	err := s.file.Close()
	s.file = nil
	return err
}

// Path reports the journal's current location, for tests and logging.
func (s *Sink) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}
