package journalsink

import (
	"os"
	"path/filepath"

	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/pathutil"
)

const (
	journalDirMode = 0711
	journalTemplate = "log-"
)

// createJournal implements spec.md §4.3's create-journal: format a path
// under <relay-dir>/incoming/<prefix>/, ensure the parent exists (mode
// 0711, root-owned in the original — this port creates it with the
// process's own ownership since it does not run as root in general), open
// it create-exclusive with a unique suffix, and acquire a non-blocking
// exclusive advisory lock. Any failure unlinks the half-created file.
func (s *Sink) createJournal() bool {
	dir := filepath.Join(s.cfg.RelayDir, "incoming", s.prefix)
	if err := pathutil.MkdirParents(dir, -1, -1, journalDirMode); err != nil {
		logger.Error("journalsink: failed to create incoming dir", "dir", dir, "error", err)
		return false
	}
	f, name, err := pathutil.CreateExclusive(dir, journalTemplate, 0600)
	if err != nil {
		logger.Error("journalsink: failed to create journal file", "dir", dir, "error", err)
		return false
	}
	if err := pathutil.Flock(int(f.Fd()), true, true); err != nil {
		f.Close()
		os.Remove(filepath.Join(dir, name))
		logger.Error("journalsink: failed to lock journal file", "error", err)
		return false
	}

	s.mu.Lock()
	s.file = f
	s.name = name
	s.path = filepath.Join(dir, name)
	s.mu.Unlock()

	logger.Debug("journalsink: created journal file", "path", s.path)
	return true
}
