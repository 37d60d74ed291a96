package journalsink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ehrlich-b/logsrvd/internal/logger"
	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

var (
	errFrameTooLarge    = errors.New("client message too large")
	errInvalidJournal   = errors.New("invalid journal file, unable to restart")
	errUnexpectedEOF    = errors.New("unexpected EOF reading journal file")
)

// pow2RoundUp returns the smallest power of two >= n, mirroring
// sudo_pow2_roundup's use in journal_seek's growth buffer.
func pow2RoundUp(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// growBuf grows s.buf (the replay buffer, whose high-water mark persists
// across frames within one replay) to at least n bytes.
func (s *Sink) growBuf(n int) []byte {
	if cap(s.buf) < n {
		s.buf = make([]byte, pow2RoundUp(n))
	}
	return s.buf[:n]
}

// replaySeek implements spec.md §4.3's replay-seek: read frames from f from
// the current position, decoding each, advancing elapsed for variants that
// carry a delay, stopping exactly at target. Grounded in journal_seek.
func replaySeek(f *os.File, s *Sink, target timeutil.Delay) (timeutil.Delay, error) {
	var elapsed timeutil.Delay
	var lenBuf [4]byte

	for {
		if _, err := io.ReadFull(f, lenBuf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return elapsed, errUnexpectedEOF
			}
			return elapsed, fmt.Errorf("%w: %v", errUnexpectedEOF, err)
		}
		msgLen := int(binary.BigEndian.Uint32(lenBuf[:]))
		if msgLen > s.cfg.MessageSizeMax {
			return elapsed, errFrameTooLarge
		}

		buf := s.growBuf(msgLen)
		if msgLen > 0 {
			if _, err := io.ReadFull(f, buf); err != nil {
				return elapsed, errUnexpectedEOF
			}
		}

		payload, err := wire.Decode(buf)
		if err != nil {
			return elapsed, errInvalidJournal
		}

		if timed, ok := payload.(wire.Timed); ok {
			elapsed = elapsed.Add(timed.GetDelay())
			logger.Debug("journalsink: replay advanced", "elapsed", elapsed.String())
			switch elapsed.Compare(target) {
			case 0:
				return elapsed, nil
			case 1:
				return elapsed, errInvalidJournal
			}
		}
	}
}
