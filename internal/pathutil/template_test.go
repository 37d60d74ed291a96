package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateExclusiveProducesUniqueNames(t *testing.T) {
	dir := t.TempDir()
	f1, name1, err := CreateExclusive(dir, "log-", 0600)
	if err != nil {
		t.Fatalf("CreateExclusive: %v", err)
	}
	defer f1.Close()
	f2, name2, err := CreateExclusive(dir, "log-", 0600)
	if err != nil {
		t.Fatalf("CreateExclusive: %v", err)
	}
	defer f2.Close()

	if name1 == name2 {
		t.Fatalf("expected distinct names, got %q twice", name1)
	}
	for _, name := range []string{name1, name2} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestLogIDPathShape(t *testing.T) {
	id := LogIDPath()
	parts := filepathSplit(id)
	if len(parts) != 3 {
		t.Fatalf("expected 3 path components, got %v", parts)
	}
	for _, p := range parts {
		if len(p) != 2 {
			t.Fatalf("expected 2-char components, got %q", p)
		}
	}
}

func filepathSplit(p string) []string {
	var parts []string
	cur := ""
	for _, c := range p {
		if c == '/' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(c)
	}
	parts = append(parts, cur)
	return parts
}
