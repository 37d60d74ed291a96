package pathutil

import "golang.org/x/sys/unix"

// SwapIDs temporarily sets the process's effective uid/gid to uid/gid and
// returns a restore closure that puts the original effective ids back.
// Grounded in iolog_mkdtemp.c's iolog_swapids: directory creation for an
// NFS-mounted I/O log root may need to happen as the configured I/O-log
// owner, and the swap must be undone on every exit path regardless of how
// the caller's function returns. Callers should `defer restore()`
// immediately after a successful call.
//
// The dispatcher is single-threaded per spec.md §5, so a process-wide
// effective-id swap is safe: no other goroutine is concurrently relying on
// the original ids for the duration of the swap.
func SwapIDs(uid, gid int) (restore func() error, err error) {
	origUID := unix.Geteuid()
	origGID := unix.Getegid()

	if gid >= 0 {
		if err := unix.Setegid(gid); err != nil {
			return nil, err
		}
	}
	if uid >= 0 {
		if err := unix.Seteuid(uid); err != nil {
			if gid >= 0 {
				_ = unix.Setegid(origGID)
			}
			return nil, err
		}
	}

	restored := false
	return func() error {
		if restored {
			return nil
		}
		restored = true
		var err error
		if uid >= 0 {
			if e := unix.Seteuid(origUID); e != nil {
				err = e
			}
		}
		if gid >= 0 {
			if e := unix.Setegid(origGID); e != nil && err == nil {
				err = e
			}
		}
		return err
	}, nil
}
