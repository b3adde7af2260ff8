package config

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/filesystem"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/where"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			rejected, err := Setup()
			So(err, ShouldBeNil)
			So(rejected, ShouldBeEmpty)
		})

		Convey("Should have default values populated", func() {
			_, _ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetFloat64(key.PlayerVolume), ShouldEqual, 0.5)
			So(viper.GetInt(key.PlayerSeekStepMs), ShouldEqual, 10000)
			So(viper.GetInt(key.PlayerPollIntervalMs), ShouldEqual, 500)
		})

		Convey("Should register every defined key", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("player.poll_interval_ms")
			So(result, ShouldEqual, "player_poll_interval_ms")
		})
	})
}

func TestSetupRejectsInvalidValues(t *testing.T) {
	Convey("Given a config file with out of range values", t, func() {
		path := filepath.Join(where.Config(), "vidplay.toml")
		So(afero.WriteFile(filesystem.API(), path, []byte("[player]\nvolume = 3.5\n\n[pip]\nwidth = 640\n"), 0o644), ShouldBeNil)
		Reset(func() {
			_ = filesystem.API().Remove(path)
			viper.Reset()
		})

		rejected, err := Setup()
		So(err, ShouldBeNil)

		Convey("The invalid value falls back to its default", func() {
			So(rejected, ShouldHaveLength, 1)
			So(rejected[0].Error(), ShouldContainSubstring, key.PlayerVolume)
			So(viper.GetFloat64(key.PlayerVolume), ShouldEqual, 0.5)
		})

		Convey("Valid values from the file are kept", func() {
			So(viper.GetInt(key.PipWidth), ShouldEqual, 640)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the registered fields", t, func() {
		volume := Default[key.PlayerVolume]
		width := Default[key.PipWidth]
		level := Default[key.LogsLevel]
		path := Default[key.LibraryPath]

		Convey("Values inside their range are accepted", func() {
			So(volume.Validate(1.0), ShouldBeNil)
			So(width.Validate(160), ShouldBeNil)
			So(level.Validate("DEBUG"), ShouldBeNil)
			So(path.Validate("/videos"), ShouldBeNil)
		})

		Convey("Values outside their range are refused", func() {
			So(volume.Validate(-0.1), ShouldNotBeNil)
			So(width.Validate(10), ShouldNotBeNil)
			So(level.Validate("chatty"), ShouldNotBeNil)
		})

		Convey("A value of the wrong type is refused", func() {
			err := volume.Validate("loud")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "float64")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PipWidth]

		Convey("Env should carry the application prefix", func() {
			So(field.Env(), ShouldEqual, "VIDPLAY_PIP_WIDTH")
		})

		Convey("typeName should describe the default value", func() {
			So(field.typeName(), ShouldEqual, "int")
			volume := Default[key.PlayerVolume]
			So(volume.typeName(), ShouldEqual, "float64")
		})
	})
}
