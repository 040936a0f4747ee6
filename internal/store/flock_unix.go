//go:build unix

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive takes a non-blocking advisory exclusive lock on f, the
// way a second imgfs_server or imgfscmd process opening the same backing
// file would otherwise race the in-process mutex this package also uses.
func flockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}
