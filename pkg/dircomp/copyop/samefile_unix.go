//go:build unix

package copyop

import (
	"errors"

	"golang.org/x/sys/unix"
)

// sameFile reports whether src and dst are the same inode on the
// same device. A missing destination is simply not the same file.
func sameFile(src, dst string) (bool, error) {
	var a, b unix.Stat_t
	if err := unix.Stat(src, &a); err != nil {
		return false, err
	}
	if err := unix.Stat(dst, &b); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, err
	}
	return a.Dev == b.Dev && a.Ino == b.Ino, nil
}
