package eventlog

import (
	"fmt"
	"os"
	"sync"

	"github.com/RackSec/srslog"
)

// Writer accepts rendered event-log lines. spec.md §4.4 explicitly leaves
// the formatter's output sinks to "the external event-log library"; this
// repo's ambient-stack expansion (SPEC_FULL.md §11.4) still needs a
// concrete one, since a complete daemon has to write its accept/reject/alert
// trail somewhere.
type Writer interface {
	WriteRecord(r Record) error
	Close() error
}

// FileWriter appends formatted records to a plain append-only file.
type FileWriter struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	return &FileWriter{f: f}, nil
}

func (w *FileWriter) WriteRecord(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintln(w.f, r.Format())
	return err
}

func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// SyslogWriter sends formatted records to syslog via RackSec/srslog,
// grounded in moby-moby's go.mod (the only real syslog client library in
// the retrieval pack). network is "" for the local syslog socket, or
// "udp"/"tcp" with a raddr to log to a remote collector.
type SyslogWriter struct {
	mu sync.Mutex
	w  *srslog.Writer
}

func NewSyslogWriter(network, raddr, tag string) (*SyslogWriter, error) {
	var w *srslog.Writer
	var err error
	if network == "" {
		w, err = srslog.New(srslog.LOG_AUTH|srslog.LOG_INFO, tag)
	} else {
		w, err = srslog.Dial(network, raddr, srslog.LOG_AUTH|srslog.LOG_INFO, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("eventlog: dial syslog: %w", err)
	}
	return &SyslogWriter{w: w}, nil
}

func (w *SyslogWriter) WriteRecord(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch r.Event {
	case "reject", "alert":
		return w.w.Warning(r.Format())
	default:
		return w.w.Info(r.Format())
	}
}

func (w *SyslogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Close()
}

// MultiWriter fans a record out to every underlying Writer, failing only
// once all have been attempted.
type MultiWriter struct {
	writers []Writer
}

func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) WriteRecord(r Record) error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.WriteRecord(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiWriter) Close() error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
