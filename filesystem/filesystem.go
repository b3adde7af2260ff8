// Package filesystem holds the afero backend that every file access in
// vidplay goes through: config, logs, the library scan and its cache.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

func API() afero.Afero {
	return backend
}

// SetFs swaps the backend. Tests use it to run in memory or to inject failures.
func SetFs(fs afero.Fs) {
	backend = afero.Afero{Fs: fs}
}

func SetOsFs() {
	SetFs(afero.NewOsFs())
}

func SetMemMapFs() {
	SetFs(afero.NewMemMapFs())
}
