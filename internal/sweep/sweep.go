// Package sweep prunes IPC sockets left behind by sessions that did not shut down cleanly.
package sweep

import (
	"net"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/vidplay-cli/vidplay/filesystem"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/util"
)

const dialTimeout = 100 * time.Millisecond

// Sockets removes every *.sock file in dir that nothing answers on and
// returns how many were removed.
func Sockets(dir string) int {
	matches, err := afero.Glob(filesystem.API(), filepath.Join(dir, "*.sock"))
	if err != nil {
		log.Warnf("sweep: glob %s: %v", dir, err)
		return 0
	}

	var removed int
	for _, path := range matches {
		if alive(path) {
			continue
		}
		if err := filesystem.API().Remove(path); err != nil {
			log.Warnf("sweep: remove %s: %v", path, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Infof("sweep: removed %s", util.Quantify(removed, "stale socket", "stale sockets"))
	}
	return removed
}

func alive(path string) bool {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
