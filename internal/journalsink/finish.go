package journalsink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/pathutil"
)

// finish implements spec.md §4.3's finish step: flush, rewind, mint a
// guaranteed-unique outgoing name (by create-exclusive then immediately
// closing that throwaway handle — only the name is wanted), rename
// incoming -> outgoing, and update the stored path. The advisory lock
// persists on the open handle until Close, independent of the rename.
//
// Open Question Decision (DESIGN.md): logsrvd_journal.c's journal_finish
// treats the old and new path lengths as "should always match" and only
// reallocates in the defensive branch. This port's template
// (journalTemplate + a fixed-width 12 hex-digit UniqueSuffix) guarantees
// equal-length names for both incoming and outgoing, so the defensive
// branch is genuinely unreachable here; Go's garbage-collected strings make
// the C code's in-place-vs-reallocate distinction moot regardless — we
// simply assign the new path string either way.
func (s *Sink) finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("flush journal file: %w", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind journal file: %w", err)
	}

	outDir := filepath.Join(s.cfg.RelayDir, "outgoing", s.prefix)
	if err := pathutil.MkdirParents(outDir, -1, -1, journalDirMode); err != nil {
		return fmt.Errorf("create outgoing dir: %w", err)
	}

	throwaway, newName, err := pathutil.CreateExclusive(outDir, journalTemplate, 0600)
	if err != nil {
		return fmt.Errorf("mint outgoing name: %w", err)
	}
	newPath := filepath.Join(outDir, newName)
	throwaway.Close()
	os.Remove(newPath) // only the name was wanted; rename below recreates it

	if err := os.Rename(s.path, newPath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", s.path, newPath, err)
	}

	logger.Debug("journalsink: finished journal", "from", s.path, "to", newPath)
	s.path = newPath
	s.name = newName
	return nil
}
