// Package eventlog renders accept/reject/alert records as structured
// key/value entries and writes them to a pluggable sink, following
// internal/egg/audit.go's timestamp+line writing idiom but replacing its
// ad hoc line shape with the key=value form sudo's eventlog uses.
package eventlog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// Record is one rendered accept/reject/alert entry.
type Record struct {
	Event string // "accept", "reject", or "alert"
	Time  timeutil.Delay
	Extra map[string]string // e.g. "reason" for reject/alert
	Info  map[string]string // rendered info block
}

// Render builds a Record from a well-known event kind, timestamp, optional
// extra fields, and an info block. The loop over info mirrors the callback
// the original logsrvd_json_log_cb plugs into
// eventlog_accept/eventlog_reject/eventlog_alert: each info entry in turn is
// classified as a number, string, or string-list; any other kind is an
// error per spec.md §4.4.
func Render(event string, t timeutil.Delay, extra map[string]string, info []wire.InfoValue) (Record, error) {
	r := Record{Event: event, Time: t, Extra: extra, Info: map[string]string{}}
	for _, v := range info {
		switch v.Kind {
		case wire.InfoNumber:
			r.Info[v.Key] = fmt.Sprintf("%d", v.Number)
		case wire.InfoString:
			r.Info[v.Key] = v.Str
		case wire.InfoStringList:
			r.Info[v.Key] = strings.Join(v.StrList, ",")
		default:
			return Record{}, fmt.Errorf("eventlog: info key %q has unrecognized value kind", v.Key)
		}
	}
	return r, nil
}

// Format renders r as a single logfmt-style line, fields in a stable order
// so output is diffable across runs.
func (r Record) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "event=%s time=%s", r.Event, r.Time.String())

	extraKeys := sortedKeys(r.Extra)
	for _, k := range extraKeys {
		fmt.Fprintf(&sb, " %s=%s", k, quoteIfNeeded(r.Extra[k]))
	}

	infoKeys := sortedKeys(r.Info)
	for _, k := range infoKeys {
		fmt.Fprintf(&sb, " %s=%s", k, quoteIfNeeded(r.Info[k]))
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
