// Package sinkfactory constructs the active sink for a new session,
// choosing between the local sink and the journal sink per cfg.RelayMode
// (GLOSSARY's "Sink factory").
package sinkfactory

import (
	"fmt"

	"github.com/ehrlich-b/logsrvd/internal/config"
	"github.com/ehrlich-b/logsrvd/internal/eventlog"
	"github.com/ehrlich-b/logsrvd/internal/journalsink"
	"github.com/ehrlich-b/logsrvd/internal/localsink"
	"github.com/ehrlich-b/logsrvd/internal/sink"
)

// New builds the sink cfg.RelayMode selects. prefix identifies the
// submitting host for journal staging; it is ignored by the local sink.
func New(cfg config.Config, events eventlog.Writer, prefix string) (sink.Sink, error) {
	switch cfg.RelayMode {
	case "", "local":
		return localsink.New(cfg, events), nil
	case "journal":
		return journalsink.New(cfg, prefix), nil
	default:
		return nil, fmt.Errorf("sinkfactory: unrecognized relay-mode %q", cfg.RelayMode)
	}
}
