// Package iolog manages the per-session I/O log directory: a timing file
// plus one lazily-created file per captured stream, with optional gzip
// compression. Grounded in internal/egg/server.go's audit file handling
// (gzip.Writer over an *os.File, lazy creation, periodic flush) and in
// logsrvd_local.c's iolog_create/iolog_openat.
package iolog

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ehrlich-b/logsrvd/internal/pathutil"
	"github.com/ehrlich-b/logsrvd/internal/wire"
)

// streamFile is one lazily-opened per-fd data file, optionally gzip-wrapped.
type streamFile struct {
	f  *os.File
	gw *gzip.Writer // nil unless compressed
}

func (s *streamFile) Writer() io.Writer {
	if s.gw != nil {
		return s.gw
	}
	return s.f
}

func (s *streamFile) Close() error {
	if s.gw != nil {
		if err := s.gw.Close(); err != nil {
			s.f.Close()
			return err
		}
	}
	return s.f.Close()
}

// names gives each IoFd slot its on-disk filename, matching sudo's iolog
// directory layout (ttyin, ttyout, stdin, stdout, stderr, timing).
var names = map[wire.IoFd]string{
	wire.IoFdTTYIn:  "ttyin",
	wire.IoFdTTYOut: "ttyout",
	wire.IoFdStdin:  "stdin",
	wire.IoFdStdout: "stdout",
	wire.IoFdStderr: "stderr",
}

// FileSet is one session's I/O log directory: the timing file, a metadata
// file ("log"), and the per-stream data files, created lazily.
type FileSet struct {
	Dir        string
	Compressed bool
	DirFd      int
	// FileMode is the mode new stream files are opened with — iolog-mode,
	// threaded through from Create so lazily-created stream files match the
	// timing file's mode.
	FileMode os.FileMode

	timing  *os.File
	streams map[wire.IoFd]*streamFile
}

// Create makes a fresh I/O log directory at dir (mode dirMode, owned by
// uid/gid when either is >= 0) and opens it, creating the timing file with
// fileMode. Grounded in iolog_mkdtemp.c: directory creation is first
// attempted as the calling process, then retried as the configured
// iolog-uid/iolog-gid (pathutil.SwapIDs) if it fails with EACCES, the NFS
// case where only the I/O log owner can write the mounted root.
func Create(dir string, dirMode, fileMode os.FileMode, uid, gid int, compressed bool) (*FileSet, error) {
	if err := mkdirParentsAsIologOwner(dir, dirMode, uid, gid); err != nil {
		return nil, err
	}
	if err := os.Chmod(dir, dirMode); err != nil {
		return nil, fmt.Errorf("iolog: chmod %s: %w", dir, err)
	}
	dirFd, err := pathutil.OpenDirFd(dir)
	if err != nil {
		return nil, err
	}
	timing, err := os.OpenFile(filepath.Join(dir, "timing"), os.O_CREATE|os.O_RDWR|os.O_TRUNC, fileMode)
	if err != nil {
		return nil, fmt.Errorf("iolog: create timing: %w", err)
	}
	if uid >= 0 || gid >= 0 {
		if err := timing.Chown(uid, gid); err != nil {
			timing.Close()
			return nil, fmt.Errorf("iolog: chown timing: %w", err)
		}
	}
	return &FileSet{
		Dir:        dir,
		Compressed: compressed,
		DirFd:      dirFd,
		FileMode:   fileMode,
		timing:     timing,
		streams:    map[wire.IoFd]*streamFile{},
	}, nil
}

// mkdirParentsAsIologOwner creates dir (and any missing parents) owned by
// uid/gid. If that fails with EACCES and an owner is configured, it retries
// once after swapping the process's effective uid/gid to that owner, per
// iolog_mkdtemp.c's "try again as the I/O log owner (for NFS)" fallback.
func mkdirParentsAsIologOwner(dir string, dirMode os.FileMode, uid, gid int) error {
	err := pathutil.MkdirParents(dir, uid, gid, dirMode)
	if err == nil || !errors.Is(err, os.ErrPermission) {
		return err
	}
	if uid < 0 && gid < 0 {
		return err
	}
	restore, swapErr := pathutil.SwapIDs(uid, gid)
	if swapErr != nil {
		return err
	}
	defer restore()
	return pathutil.MkdirParents(dir, -1, -1, dirMode)
}

// Open reopens an existing I/O log directory for restart/read+write access.
// Compression is auto-detected from whether any stream file on disk carries
// the .gz suffix, since a restarting client does not repeat the original
// accept's compression choice.
func Open(dir string) (*FileSet, error) {
	dirFd, err := pathutil.OpenDirFd(dir)
	if err != nil {
		return nil, err
	}
	timing, err := os.OpenFile(filepath.Join(dir, "timing"), os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("iolog: open timing: %w", err)
	}
	return &FileSet{
		Dir:        dir,
		Compressed: detectCompressed(dir),
		DirFd:      dirFd,
		timing:     timing,
		streams:    map[wire.IoFd]*streamFile{},
	}, nil
}

func detectCompressed(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".gz") {
			return true
		}
	}
	return false
}

// TimingFile returns the open timing file handle.
func (fs *FileSet) TimingFile() *os.File { return fs.timing }

// streamName reports a stream file's on-disk name, applying the .gz suffix
// when compression is enabled.
func (fs *FileSet) streamName(fd wire.IoFd) string {
	base := names[fd]
	if fs.Compressed {
		return base + ".gz"
	}
	return base
}

// StreamWriter returns (creating if necessary) the writer for fd. Files are
// opened O_RDWR without O_APPEND (not O_WRONLY|O_APPEND) so that a restart's
// positional seek (OpenStreamForSeek) and a fresh session's sequential
// writes share one code path: the OS advances the file offset after every
// successful Write regardless of how that offset was last set.
func (fs *FileSet) StreamWriter(fd wire.IoFd) (io.Writer, error) {
	if sf, ok := fs.streams[fd]; ok {
		return sf.Writer(), nil
	}
	path := filepath.Join(fs.Dir, fs.streamName(fd))
	mode := fs.FileMode
	if mode == 0 {
		mode = 0600
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, mode)
	if err != nil {
		return nil, fmt.Errorf("iolog: create %s: %w", names[fd], err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, fmt.Errorf("iolog: seek %s: %w", names[fd], err)
	}
	sf := &streamFile{f: f}
	if fs.Compressed {
		sf.gw = gzip.NewWriter(f)
	}
	fs.streams[fd] = sf
	return sf.Writer(), nil
}

// OpenStreamForSeek opens fd's existing (non-compressed) stream file
// read+write and seeks it to offset, so that subsequent StreamWriter calls
// resume writing positionally from there — the restart counterpart to
// StreamWriter's fresh-create path. Grounded in store_restart_local's
// per-file iolog_seekto.
func (fs *FileSet) OpenStreamForSeek(fd wire.IoFd, offset int64) error {
	path := filepath.Join(fs.Dir, fs.streamName(fd))
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("iolog: reopen %s: %w", names[fd], err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return fmt.Errorf("iolog: seek %s to %d: %w", names[fd], offset, err)
	}
	fs.streams[fd] = &streamFile{f: f}
	return nil
}

// Close closes every open file handle, releasing the directory fd last.
func (fs *FileSet) Close() error {
	var firstErr error
	for _, sf := range fs.streams {
		if err := sf.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := fs.timing.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if fs.DirFd >= 0 {
		if err := closeFd(fs.DirFd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
