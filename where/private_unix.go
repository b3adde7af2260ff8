//go:build !windows

package where

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// secure refuses directories of other users and strips group and world access
// from our own. Backends without ownership data, such as the in-memory one,
// skip the owner check.
func secure(fs afero.Afero, dir string, info os.FileInfo) error {
	if st, ok := info.Sys().(*syscall.Stat_t); ok && int(st.Uid) != os.Getuid() {
		return fmt.Errorf("owned by uid %d", st.Uid)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return fs.Chmod(dir, 0o700)
	}
	return nil
}
