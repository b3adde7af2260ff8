package filesystem

import (
	"io"
	"os"
)

// GacheFs routes the library scan cache through API, so tests running on
// MemMapFs never touch the real cache directory.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
