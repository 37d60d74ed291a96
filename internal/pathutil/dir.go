// Package pathutil implements the filesystem primitives spec.md lists as
// external collaborators (mkdir-parents, advisory locking, uid swapping)
// using golang.org/x/sys/unix, following the directory-relative-fd style of
// sudo's logsrvd_local.c / iolog_mkdtemp.c rather than plain os.* calls.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// MkdirParents creates path and any missing parent directories, mode applied
// to every created component. When uid or gid is >= 0, every component this
// call creates (not components that already existed) is chowned to it. It is
// the Go analog of sudo_mkdir_parents.
func MkdirParents(path string, uid, gid int, mode os.FileMode) error {
	path = filepath.Clean(path)
	if path == "." || path == "/" {
		return nil
	}
	parts := strings.Split(path, string(filepath.Separator))
	cur := ""
	if filepath.IsAbs(path) {
		cur = string(filepath.Separator)
	}
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = filepath.Join(cur, p)
		if cur == "" {
			cur = p
		}
		if err := os.Mkdir(cur, mode); err != nil {
			if os.IsExist(err) {
				continue
			}
			return fmt.Errorf("mkdir %s: %w", cur, err)
		}
		if uid >= 0 || gid >= 0 {
			if err := os.Chown(cur, uid, gid); err != nil {
				return fmt.Errorf("chown %s: %w", cur, err)
			}
		}
	}
	return nil
}

// OpenDirFd opens path as a directory and returns its file descriptor, for
// use with Openat/Fchmodat. Callers must close it (unix.Close) when done.
func OpenDirFd(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return -1, fmt.Errorf("open dir %s: %w", path, err)
	}
	return fd, nil
}

// ClearWriteBits chmods name (resolved relative to dirFd) to mode with the
// owner/group/other write bits cleared. It is the Go analog of
// store_exit_local's fchmodat call that marks a finished timing file
// complete, using the configured iolog mode as the base rather than
// restat-ing the file.
func ClearWriteBits(dirFd int, name string, mode os.FileMode) error {
	m := uint32(mode) &^ (unix.S_IWUSR | unix.S_IWGRP | unix.S_IWOTH)
	if err := unix.Fchmodat(dirFd, name, m, 0); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	return nil
}

// IsWritableByOwner reports whether name (relative to dirFd) currently has
// its owner-write bit set — the local sink's liveness indicator.
func IsWritableByOwner(dirFd int, name string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Fstatat(dirFd, name, &st, 0); err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return st.Mode&unix.S_IWUSR != 0, nil
}

// Flock applies an advisory lock to fd, exclusive or shared, blocking or
// not. It is the Go analog of sudo_lock_file.
func Flock(fd int, exclusive, nonblocking bool) error {
	op := unix.LOCK_SH
	if exclusive {
		op = unix.LOCK_EX
	}
	if nonblocking {
		op |= unix.LOCK_NB
	}
	return unix.Flock(fd, op)
}

// Unflock releases the advisory lock held on fd.
func Unflock(fd int) error {
	return unix.Flock(fd, unix.LOCK_UN)
}
