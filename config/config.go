// Package config registers vidplay's settings and loads them through viper.
package config

import (
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/constant"
	"github.com/vidplay-cli/vidplay/filesystem"
	"github.com/vidplay-cli/vidplay/where"
)

// EnvKeyReplacer maps config keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup loads vidplay.toml from the config dir on top of the defaults and
// the VIDPLAY_* environment. A missing file is not an error.
//
// Values that fail validation are replaced by their defaults and returned
// so the caller can report them once logging is up.
func Setup() (rejected []error, err error) {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return nil, err
	}

	return sanitize(), nil
}

// sanitize falls back to the default for every invalid value.
func sanitize() []error {
	var rejected []error
	for _, k := range lo.Keys(Default) {
		field := Default[k]
		if err := field.Validate(viper.Get(k)); err != nil {
			viper.Set(k, field.Value)
			rejected = append(rejected, err)
		}
	}
	return rejected
}
