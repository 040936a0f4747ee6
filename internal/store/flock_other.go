//go:build !unix

package store

import "os"

// flockExclusive is a no-op on platforms without flock(2); the
// in-process mutex still serializes operations within one process.
func flockExclusive(f *os.File) error {
	return nil
}
