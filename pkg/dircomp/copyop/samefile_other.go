//go:build !unix

package copyop

import "os"

// sameFile falls back to os.SameFile where inode identity is not
// directly available.
func sameFile(src, dst string) (bool, error) {
	a, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	b, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return os.SameFile(a, b), nil
}
