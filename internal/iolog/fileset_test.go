package iolog

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ehrlich-b/logsrvd/internal/wire"
)

func TestCreateThenStreamWriterWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "00", "00", "01")
	fs, err := Create(dir, 0700, 0600, -1, -1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer fs.Close()

	w, err := fs.StreamWriter(wire.IoFdStdout)
	if err != nil {
		t.Fatalf("StreamWriter: %v", err)
	}
	if _, err := io.WriteString(w, "hello"); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

// TestCreateAppliesConfiguredFileMode covers spec.md §6's iolog-mode key:
// both the timing file and lazily-created stream files must be opened with
// the configured mode, not a hardcoded 0600.
func TestCreateAppliesConfiguredFileMode(t *testing.T) {
	dir := t.TempDir()
	fs, err := Create(dir, 0700, 0640, -1, -1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer fs.Close()

	timingInfo, err := fs.TimingFile().Stat()
	if err != nil {
		t.Fatalf("stat timing: %v", err)
	}
	if timingInfo.Mode().Perm() != 0640 {
		t.Fatalf("got timing mode %o, want 0640", timingInfo.Mode().Perm())
	}

	if _, err := fs.StreamWriter(wire.IoFdStdout); err != nil {
		t.Fatalf("StreamWriter: %v", err)
	}
	streamInfo, err := os.Stat(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatalf("stat stdout: %v", err)
	}
	if streamInfo.Mode().Perm() != 0640 {
		t.Fatalf("got stdout mode %o, want 0640", streamInfo.Mode().Perm())
	}
}

func TestOpenDetectsCompression(t *testing.T) {
	dir := t.TempDir()
	fs, err := Create(dir, 0700, 0600, -1, -1, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w, err := fs.StreamWriter(wire.IoFdStdout)
	if err != nil {
		t.Fatalf("StreamWriter: %v", err)
	}
	io.WriteString(w, "compressed")
	fs.Close()

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	if !reopened.Compressed {
		t.Fatalf("expected Open to detect compression")
	}
}

func TestOpenStreamForSeekPositionsWrites(t *testing.T) {
	dir := t.TempDir()
	fs, err := Create(dir, 0700, 0600, -1, -1, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w, _ := fs.StreamWriter(wire.IoFdStdout)
	io.WriteString(w, "0123456789")
	fs.Close()

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	if err := reopened.OpenStreamForSeek(wire.IoFdStdout, 3); err != nil {
		t.Fatalf("OpenStreamForSeek: %v", err)
	}
	w2, err := reopened.StreamWriter(wire.IoFdStdout)
	if err != nil {
		t.Fatalf("StreamWriter: %v", err)
	}
	io.WriteString(w2, "XYZ")

	data, err := os.ReadFile(filepath.Join(dir, "stdout"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "012XYZ6789" {
		t.Fatalf("got %q", data)
	}
}
