package iolog

import (
	"bytes"
	"testing"

	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

func TestWriteParseDataLineRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDataLine(&buf, wire.IoFdStdout, timeutil.Delay{Sec: 1, Nsec: 500_000_000}, 42); err != nil {
		t.Fatalf("WriteDataLine: %v", err)
	}
	line := buf.String()
	rec, err := ParseTimingLine(line[:len(line)-1])
	if err != nil {
		t.Fatalf("ParseTimingLine: %v", err)
	}
	if rec.Kind != int(wire.IoFdStdout) || rec.DataLen != 42 {
		t.Fatalf("got %+v", rec)
	}
	if rec.Delay != (timeutil.Delay{Sec: 1, Nsec: 500_000_000}) {
		t.Fatalf("got delay %+v", rec.Delay)
	}
}

func TestWriteParseWinsizeLineRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWinsizeLine(&buf, timeutil.Delay{Sec: 2}, 24, 80); err != nil {
		t.Fatalf("WriteWinsizeLine: %v", err)
	}
	line := buf.String()
	rec, err := ParseTimingLine(line[:len(line)-1])
	if err != nil {
		t.Fatalf("ParseTimingLine: %v", err)
	}
	if rec.Rows != 24 || rec.Cols != 80 {
		t.Fatalf("got %+v", rec)
	}
}

func TestWriteParseSuspendLineRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSuspendLine(&buf, timeutil.Delay{Sec: 3}, "SIGTSTP"); err != nil {
		t.Fatalf("WriteSuspendLine: %v", err)
	}
	line := buf.String()
	rec, err := ParseTimingLine(line[:len(line)-1])
	if err != nil {
		t.Fatalf("ParseTimingLine: %v", err)
	}
	if rec.Signal != "SIGTSTP" {
		t.Fatalf("got %+v", rec)
	}
}

func TestParseTimingLineRejectsMalformed(t *testing.T) {
	if _, err := ParseTimingLine("not a timing line"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := ParseTimingLine("1 abc 10"); err == nil {
		t.Fatalf("expected error for malformed delay")
	}
}
