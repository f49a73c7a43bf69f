package where

import (
	"path/filepath"
	"testing"

	"github.com/malcr/malcr/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honours the override", func() {
			t.Setenv(EnvConfigPath, "/tmp/malcr-test-config")
			So(Config(), ShouldEqual, "/tmp/malcr-test-config")
			So(Logs(), ShouldEqual, filepath.Join("/tmp/malcr-test-config", "logs"))
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("LastRun() lives in the cache", func() {
			So(filepath.Dir(LastRun()), ShouldEqual, Cache())
		})
	})
}
