// Package config loads the daemon's YAML configuration, following
// internal/egg/config.go's idiom of custom UnmarshalYAML methods for fields
// that accept either a bare scalar or a richer shape.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileMode decodes a YAML scalar like "0600" as an os.FileMode, the scalar
// coercion trick BaseField uses in egg/config.go applied to octal strings
// instead of sandbox base names.
type FileMode os.FileMode

func (m *FileMode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: file mode must be a scalar")
	}
	v, err := strconv.ParseUint(value.Value, 8, 32)
	if err != nil {
		return fmt.Errorf("config: invalid file mode %q: %w", value.Value, err)
	}
	*m = FileMode(v)
	return nil
}

func (m FileMode) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("0%o", uint32(m)), nil
}

// DropPercent decodes a YAML percentage string ("0", "5%", "12.5") into a
// probability in [0,1], the Go analog of logsrvd_local.c's set_random_drop,
// which divides the parsed percentage by 100.
type DropPercent float64

func (d *DropPercent) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("config: random-drop-percent must be a scalar")
	}
	s := strings.TrimSuffix(strings.TrimSpace(value.Value), "%")
	if s == "" {
		*d = 0
		return nil
	}
	pct, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("config: invalid random-drop-percent %q: %w", value.Value, err)
	}
	if pct < 0 || pct > 100 {
		return fmt.Errorf("config: random-drop-percent %q out of range [0,100]", value.Value)
	}
	*d = DropPercent(pct / 100)
	return nil
}

// Config mirrors spec.md §6's configuration keys, plus the ambient keys a
// runnable daemon needs (SPEC_FULL.md §10.2).
type Config struct {
	RelayDir         string      `yaml:"relay-dir"`
	IologMode        FileMode    `yaml:"iolog-mode"`
	IologDirMode     FileMode    `yaml:"iolog-dir-mode"`
	IologUID         int         `yaml:"iolog-uid"`
	IologGID         int         `yaml:"iolog-gid"`
	ServerTimeout    int         `yaml:"server-timeout"` // seconds
	MessageSizeMax   int         `yaml:"message-size-max"`
	RandomDropPercent DropPercent `yaml:"random-drop-percent"`

	ListenAddr    string `yaml:"listen-addr"`
	LogLevel      string `yaml:"log-level"`
	LogFile       string `yaml:"log-file"`
	SyslogEnable  bool   `yaml:"syslog-enable"`
	EventLogFile  string `yaml:"event-log-file"`

	IologDir string `yaml:"iolog-dir"`

	// RelayMode chooses the sink factory's output for every session this
	// daemon instance accepts: "local" (default) or "journal". Neither
	// spec.md nor original_source/ specify how this choice is made, since
	// the C implementation picks it per relay.conf server-list entry
	// rather than per daemon; DESIGN.md records this as a resolved open
	// question.
	RelayMode string `yaml:"relay-mode"`
}

// Default returns a Config with every field the core relies on filled in,
// matching spec.md §6's "each key read-only to the core, changes between
// sessions honored" by giving every session a complete, self-consistent
// snapshot to read from.
func Default() Config {
	return Config{
		RelayDir:          "/var/log/logsrvd/relay",
		IologDir:          "/var/log/logsrvd/iolog",
		IologMode:         FileMode(0600),
		IologDirMode:      FileMode(0700),
		IologUID:          -1,
		IologGID:          -1,
		ServerTimeout:     30,
		MessageSizeMax:    1024 * 1024,
		RandomDropPercent: 0,
		ListenAddr:        ":30344",
		LogLevel:          "info",
		SyslogEnable:      false,
		EventLogFile:      "/var/log/logsrvd/eventlog",
		RelayMode:         "local",
	}
}

// Load reads path, overlaying it on Default() so unset keys keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
