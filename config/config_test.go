package config

import (
	"os"
	"testing"
	"time"

	"github.com/malcr/malcr/crunchyroll"
	"github.com/malcr/malcr/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

var requiredEnv = map[string]string{
	"MAL_USERNAME":    "tanaka",
	"MAL_CLIENT_ID":   "0123456789abcdef",
	"EMAIL":           "tanaka@example.com",
	"PASSWORD":        "hunter2",
	"PREFERRED_AUDIO": "ja-JP",
	"CLOCALE":         "en-US",
}

func setEnv(t *testing.T, except ...string) {
	skip := make(map[string]bool)
	for _, e := range except {
		skip[e] = true
	}
	for name, value := range requiredEnv {
		if skip[name] {
			t.Setenv(name, "")
			continue
		}
		t.Setenv(name, value)
	}
}

func TestLoad(t *testing.T) {
	Convey("Given a fresh configuration", t, func() {
		viper.Reset()
		Reset(viper.Reset)

		Convey("When every required variable is set", func() {
			setEnv(t)
			So(Setup(), ShouldBeNil)

			settings, err := Load()

			Convey("Then the settings are populated", func() {
				So(err, ShouldBeNil)
				So(settings.MalUsername, ShouldEqual, "tanaka")
				So(settings.Email, ShouldEqual, "tanaka@example.com")
				So(settings.PreferredAudio.String(), ShouldEqual, "ja-JP")
				So(settings.Locale.String(), ShouldEqual, "en-US")
			})

			Convey("And optional fields carry their defaults", func() {
				So(settings.PageDelay, ShouldEqual, 2*time.Second)
				So(settings.ClientID, ShouldEqual, crunchyroll.PublicClientID)
				So(settings.DryRun, ShouldBeFalse)
				So(settings.TLSFingerprint, ShouldBeTrue)
			})
		})

		Convey("When a required variable is missing", func() {
			setEnv(t, "MAL_USERNAME", "PASSWORD")
			So(Setup(), ShouldBeNil)

			_, err := Load()

			Convey("Then the error names every missing key", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "'MAL_USERNAME' environment variable not found")
				So(err.Error(), ShouldContainSubstring, "'PASSWORD' environment variable not found")
				So(err.Error(), ShouldNotContainSubstring, "EMAIL")
			})
		})

		Convey("When a locale is malformed", func() {
			setEnv(t)
			t.Setenv("CLOCALE", "en_US!!")
			So(Setup(), ShouldBeNil)

			_, err := Load()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "'CLOCALE' is not a valid locale")
		})

		Convey("When the dry run switch is set", func() {
			setEnv(t)
			t.Setenv("MALCR_DRY_RUN", "true")
			So(Setup(), ShouldBeNil)

			settings, err := Load()
			So(err, ShouldBeNil)
			So(settings.DryRun, ShouldBeTrue)
		})
	})
}

func TestDotEnv(t *testing.T) {
	Convey("Given a .env file in the working directory", t, func() {
		viper.Reset()
		Reset(viper.Reset)

		dir := t.TempDir()
		wd, _ := os.Getwd()
		So(os.Chdir(dir), ShouldBeNil)
		Reset(func() { _ = os.Chdir(wd) })

		So(os.WriteFile(DotEnv, []byte("MALCR_TEST_FROM_FILE=file\nMALCR_TEST_SHADOWED=file\n"), 0o600), ShouldBeNil)
		t.Setenv("MALCR_TEST_SHADOWED", "env")
		t.Setenv("MALCR_TEST_FROM_FILE", "")
		So(os.Unsetenv("MALCR_TEST_FROM_FILE"), ShouldBeNil)

		So(Setup(), ShouldBeNil)

		Convey("Then values are overlaid without replacing the environment", func() {
			So(os.Getenv("MALCR_TEST_FROM_FILE"), ShouldEqual, "file")
			So(os.Getenv("MALCR_TEST_SHADOWED"), ShouldEqual, "env")
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("The field registry", t, func() {
		Convey("Should mark the six credentials and locales as required", func() {
			count := 0
			for _, f := range Fields {
				if f.Required {
					count++
					_, ok := requiredEnv[f.Env]
					So(ok, ShouldBeTrue)
				}
			}
			So(count, ShouldEqual, len(requiredEnv))
		})

		Convey("Should index every field by key", func() {
			So(Default[key.MalUsername].Env, ShouldEqual, "MAL_USERNAME")
			So(len(Default), ShouldEqual, len(Fields))
		})
	})
}
