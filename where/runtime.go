package where

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/vidplay-cli/vidplay/constant"
	"github.com/vidplay-cli/vidplay/filesystem"
)

// EnvRuntimeDir is the per-user runtime directory of the XDG base directory layout.
const EnvRuntimeDir = "XDG_RUNTIME_DIR"

// ErrNotPrivate is returned when the runtime directory could be reached by other users.
var ErrNotPrivate = errors.New("runtime directory is not private")

func runtimeDir() (string, error) {
	if base := os.Getenv(EnvRuntimeDir); base != "" {
		return filepath.Join(base, constant.App), nil
	}

	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve runtime directory: %w", err)
	}
	return filepath.Join(cache, constant.App, "run"), nil
}

// Runtime resolves the private per-user directory holding IPC sockets. It is
// created with mode 0700. A directory owned by another user, or a symlink in
// its place, is refused; one of ours with looser permissions is tightened.
func Runtime() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}

	fs := filesystem.API()
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime directory: %w", err)
	}

	info, err := lstat(fs, dir)
	if err != nil {
		return "", fmt.Errorf("inspect runtime directory: %w", err)
	}
	if !info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("%w: %s is not a plain directory", ErrNotPrivate, dir)
	}
	if err := secure(fs, dir, info); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotPrivate, dir, err)
	}

	return dir, nil
}

func lstat(fs afero.Afero, path string) (os.FileInfo, error) {
	if l, ok := fs.Fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}

// RemoteSocket resolves the unix socket on which the running player accepts remote actions.
func RemoteSocket() (string, error) {
	dir, err := Runtime()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "remote.sock"), nil
}
