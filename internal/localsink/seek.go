package localsink

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ehrlich-b/logsrvd/internal/iolog"
	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

var errOvershoot = errors.New("invalid journal file, unable to restart")

// seekTimingFile walks dir's timing file from the beginning, accumulating
// elapsed time and each stream's byte position, then repositions every
// stream file (and the timing file itself) at the point where the walk hit
// target exactly. Grounded in store_restart_local's iolog_seekto loop.
func seekTimingFile(files *iolog.FileSet, target timeutil.Delay) error {
	data, err := os.ReadFile(filepath.Join(files.Dir, "timing"))
	if err != nil {
		return fmt.Errorf("unable to read timing file: %w", err)
	}

	var elapsed timeutil.Delay
	positions := map[wire.IoFd]int64{}
	var consumedBytes int64
	hit := false

	scanner := iolog.ScanTimingLines(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		lineBytes := int64(len(line)) + 1 // + newline

		rec, err := iolog.ParseTimingLine(line)
		if err != nil {
			return fmt.Errorf("%w: %v", errOvershoot, err)
		}

		candidate := elapsed.Add(rec.Delay)
		switch candidate.Compare(target) {
		case 0:
			if rec.Kind >= 0 && rec.Kind <= int(wire.IoFdStderr) {
				positions[wire.IoFd(rec.Kind)] += int64(rec.DataLen)
			}
			consumedBytes += lineBytes
			elapsed = candidate
			hit = true
		case 1:
			return errOvershoot
		default:
			if rec.Kind >= 0 && rec.Kind <= int(wire.IoFdStderr) {
				positions[wire.IoFd(rec.Kind)] += int64(rec.DataLen)
			}
			consumedBytes += lineBytes
			elapsed = candidate
			continue
		}
		if hit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read timing file: %w", err)
	}
	if !hit {
		return errOvershoot
	}

	for _, fd := range []wire.IoFd{wire.IoFdTTYIn, wire.IoFdTTYOut, wire.IoFdStdin, wire.IoFdStdout, wire.IoFdStderr} {
		pos := positions[fd]
		path := filepath.Join(files.Dir, streamFileName(fd))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := files.OpenStreamForSeek(fd, pos); err != nil {
			return fmt.Errorf("unable to seek stream file: %w", err)
		}
	}

	if _, err := files.TimingFile().Seek(consumedBytes, io.SeekStart); err != nil {
		return fmt.Errorf("unable to seek timing file: %w", err)
	}
	return nil
}

func streamFileName(fd wire.IoFd) string {
	switch fd {
	case wire.IoFdTTYIn:
		return "ttyin"
	case wire.IoFdTTYOut:
		return "ttyout"
	case wire.IoFdStdin:
		return "stdin"
	case wire.IoFdStdout:
		return "stdout"
	case wire.IoFdStderr:
		return "stderr"
	default:
		return ""
	}
}
