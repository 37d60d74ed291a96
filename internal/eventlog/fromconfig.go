package eventlog

import (
	"fmt"

	"github.com/ehrlich-b/logsrvd/internal/config"
)

// NewFromConfig builds the Writer cfg.SyslogEnable/EventLogFile select: the
// file writer alone, the syslog writer alone, or both fanned out through
// MultiWriter. At least one of EventLogFile or SyslogEnable must be set.
func NewFromConfig(cfg config.Config) (Writer, error) {
	var writers []Writer

	if cfg.EventLogFile != "" {
		fw, err := NewFileWriter(cfg.EventLogFile)
		if err != nil {
			return nil, err
		}
		writers = append(writers, fw)
	}

	if cfg.SyslogEnable {
		sw, err := NewSyslogWriter("", "", "logsrvd")
		if err != nil {
			return nil, err
		}
		writers = append(writers, sw)
	}

	switch len(writers) {
	case 0:
		return nil, fmt.Errorf("eventlog: no sink configured (set event-log-file or syslog-enable)")
	case 1:
		return writers[0], nil
	default:
		return NewMultiWriter(writers...), nil
	}
}
