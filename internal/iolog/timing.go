package iolog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// WriteDataLine appends a data-record timing line:
// "<kind> <sec>.<nsec9> <byte-length>\n", per spec.md §6.
func WriteDataLine(w io.Writer, fd wire.IoFd, delay timeutil.Delay, dataLen int) error {
	_, err := fmt.Fprintf(w, "%d %s %d\n", int(fd), delay.String(), dataLen)
	return err
}

// WriteWinsizeLine appends "<WINSIZE> <sec>.<nsec9> <rows> <cols>\n".
func WriteWinsizeLine(w io.Writer, delay timeutil.Delay, rows, cols uint16) error {
	_, err := fmt.Fprintf(w, "%d %s %d %d\n", int(wire.TimingWinsize), delay.String(), rows, cols)
	return err
}

// WriteSuspendLine appends "<SUSPEND> <sec>.<nsec9> <signal-name>\n".
func WriteSuspendLine(w io.Writer, delay timeutil.Delay, signal string) error {
	_, err := fmt.Fprintf(w, "%d %s %s\n", int(wire.TimingSuspend), delay.String(), signal)
	return err
}

// TimingRecord is one parsed line of a timing file.
type TimingRecord struct {
	Kind    int
	Delay   timeutil.Delay
	DataLen int    // valid when Kind is an IoFd
	Rows    uint16 // valid when Kind == TimingWinsize
	Cols    uint16
	Signal  string // valid when Kind == TimingSuspend
}

// ParseTimingLine parses one line of a timing file (without trailing '\n').
func ParseTimingLine(line string) (TimingRecord, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return TimingRecord{}, fmt.Errorf("iolog: malformed timing line %q", line)
	}
	kind, err := strconv.Atoi(fields[0])
	if err != nil {
		return TimingRecord{}, fmt.Errorf("iolog: bad kind in %q: %w", line, err)
	}
	sec, nsec, err := parseDelay(fields[1])
	if err != nil {
		return TimingRecord{}, err
	}
	rec := TimingRecord{Kind: kind, Delay: timeutil.Normalize(sec, nsec)}
	switch TimingKind := wire.TimingKind(kind); TimingKind {
	case wire.TimingWinsize:
		if len(fields) != 4 {
			return TimingRecord{}, fmt.Errorf("iolog: malformed winsize line %q", line)
		}
		rows, err := strconv.Atoi(fields[2])
		if err != nil {
			return TimingRecord{}, err
		}
		cols, err := strconv.Atoi(fields[3])
		if err != nil {
			return TimingRecord{}, err
		}
		rec.Rows, rec.Cols = uint16(rows), uint16(cols)
	case wire.TimingSuspend:
		rec.Signal = fields[2]
	default:
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return TimingRecord{}, err
		}
		rec.DataLen = n
	}
	return rec, nil
}

func parseDelay(s string) (int64, int32, error) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0, 0, fmt.Errorf("iolog: malformed delay %q", s)
	}
	sec, err := strconv.ParseInt(s[:dot], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	nsec, err := strconv.ParseInt(s[dot+1:], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return sec, int32(nsec), nil
}

// ScanTimingLines reads every line from r via a *bufio.Scanner, a thin
// wrapper kept so callers (restart's seek loop) don't re-implement
// line-splitting.
func ScanTimingLines(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}
