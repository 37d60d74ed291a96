package eventlog

import (
	"strings"
	"testing"

	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

func TestRenderClassifiesInfoKinds(t *testing.T) {
	info := []wire.InfoValue{
		{Key: "user", Kind: wire.InfoString, Str: "alice"},
		{Key: "uid", Kind: wire.InfoNumber, Number: 1000},
		{Key: "env", Kind: wire.InfoStringList, StrList: []string{"PATH=/bin", "HOME=/root"}},
	}
	r, err := Render("accept", timeutil.Delay{Sec: 1000}, nil, info)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Info["user"] != "alice" || r.Info["uid"] != "1000" {
		t.Fatalf("got info %+v", r.Info)
	}
	if r.Info["env"] != "PATH=/bin,HOME=/root" {
		t.Fatalf("got env %q", r.Info["env"])
	}
}

func TestRenderRejectsUnrecognizedKind(t *testing.T) {
	info := []wire.InfoValue{{Key: "bad", Kind: wire.InfoValueKind(99)}}
	if _, err := Render("accept", timeutil.Delay{}, nil, info); err == nil {
		t.Fatalf("expected error for unrecognized info kind")
	}
}

func TestFormatIsStableAndQuotesSpaces(t *testing.T) {
	r := Record{
		Event: "reject",
		Time:  timeutil.Delay{Sec: 5, Nsec: 0},
		Extra: map[string]string{"reason": "not authorized"},
		Info:  map[string]string{"user": "alice"},
	}
	got := r.Format()
	if !strings.Contains(got, `reason="not authorized"`) {
		t.Fatalf("expected quoted reason, got %q", got)
	}
	if !strings.HasPrefix(got, "event=reject time=5.000000000") {
		t.Fatalf("unexpected prefix: %q", got)
	}
}
