package localsink

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ehrlich-b/logsrvd/internal/iolog"
	"github.com/ehrlich-b/logsrvd/internal/timeutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// rewriteToTarget implements spec.md §4.2 step 5: when any stream file in
// dir is gzip-compressed, random access is unsupported, so restart replays
// the session from byte zero into a parallel set of temporary files up to
// target, then atomically swaps them in. Grounded in store_restart_local's
// iolog_rewrite branch.
func (s *Sink) rewriteToTarget(dir string, target timeutil.Delay) error {
	data, err := os.ReadFile(filepath.Join(dir, "timing"))
	if err != nil {
		return fmt.Errorf("read timing file: %w", err)
	}

	readers := map[wire.IoFd]*gzip.Reader{}
	writers := map[wire.IoFd]*gzip.Writer{}
	tempFiles := map[wire.IoFd]*os.File{}
	tempNames := map[wire.IoFd]string{}
	defer func() {
		for _, r := range readers {
			r.Close()
		}
		for fd, w := range writers {
			w.Close()
			tempFiles[fd].Close()
		}
	}()

	getReader := func(fd wire.IoFd) (*gzip.Reader, error) {
		if r, ok := readers[fd]; ok {
			return r, nil
		}
		path := filepath.Join(dir, streamFileName(fd)+".gz")
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		readers[fd] = gr
		return gr, nil
	}

	getWriter := func(fd wire.IoFd) (*gzip.Writer, error) {
		if w, ok := writers[fd]; ok {
			return w, nil
		}
		tmp, err := os.CreateTemp(dir, streamFileName(fd)+".rewrite-*")
		if err != nil {
			return nil, err
		}
		gw := gzip.NewWriter(tmp)
		tempFiles[fd] = tmp
		tempNames[fd] = tmp.Name()
		writers[fd] = gw
		return gw, nil
	}

	var elapsed timeutil.Delay
	var newTiming bytes.Buffer
	hit := false

	scanner := iolog.ScanTimingLines(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		rec, err := iolog.ParseTimingLine(line)
		if err != nil {
			return errOvershoot
		}
		candidate := elapsed.Add(rec.Delay)
		if candidate.Compare(target) == 1 {
			return errOvershoot
		}

		if rec.Kind >= 0 && rec.Kind <= int(wire.IoFdStderr) {
			fd := wire.IoFd(rec.Kind)
			gr, err := getReader(fd)
			if err != nil {
				return fmt.Errorf("open compressed stream %v: %w", fd, err)
			}
			gw, err := getWriter(fd)
			if err != nil {
				return fmt.Errorf("create rewrite stream %v: %w", fd, err)
			}
			if _, err := io.CopyN(gw, gr, int64(rec.DataLen)); err != nil {
				return fmt.Errorf("copy stream %v: %w", fd, err)
			}
		}
		newTiming.WriteString(line)
		newTiming.WriteByte('\n')
		elapsed = candidate

		if elapsed.Compare(target) == 0 {
			hit = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan timing file: %w", err)
	}
	if !hit {
		return errOvershoot
	}

	for fd, gw := range writers {
		if err := gw.Close(); err != nil {
			return fmt.Errorf("close rewrite stream: %w", err)
		}
		if err := tempFiles[fd].Close(); err != nil {
			return fmt.Errorf("close rewrite stream file: %w", err)
		}
		finalPath := filepath.Join(dir, streamFileName(fd)+".gz")
		if err := os.Rename(tempNames[fd], finalPath); err != nil {
			return fmt.Errorf("swap rewrite stream: %w", err)
		}
	}

	timingTmp, err := os.CreateTemp(dir, "timing.rewrite-*")
	if err != nil {
		return fmt.Errorf("create rewrite timing file: %w", err)
	}
	if _, err := timingTmp.Write(newTiming.Bytes()); err != nil {
		timingTmp.Close()
		return fmt.Errorf("write rewrite timing file: %w", err)
	}
	if err := timingTmp.Close(); err != nil {
		return fmt.Errorf("close rewrite timing file: %w", err)
	}
	if err := os.Rename(timingTmp.Name(), filepath.Join(dir, "timing")); err != nil {
		return fmt.Errorf("swap rewrite timing file: %w", err)
	}
	return nil
}
