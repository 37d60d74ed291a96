package journalsink

import (
	"encoding/binary"
	"fmt"
)

// writeFrame appends one [uint32 big-endian length][raw bytes] frame to the
// open journal file, per spec.md §6's journal-file binary schema.
func (s *Sink) writeFrame(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("journalsink: no journal file open")
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(raw)))
	if _, err := s.file.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("journalsink: write frame length: %w", err)
	}
	if len(raw) > 0 {
		if _, err := s.file.Write(raw); err != nil {
			return fmt.Errorf("journalsink: write frame payload: %w", err)
		}
	}
	return nil
}
