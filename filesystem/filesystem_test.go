package filesystem

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestOpenAppend(t *testing.T) {
	Convey("Given an in-memory backend", t, func() {
		SetMemMapFs()

		Convey("OpenAppend keeps previous content", func() {
			f, err := OpenAppend("/logs/today.log")
			So(err, ShouldBeNil)
			_, _ = f.WriteString("first\n")
			So(f.Close(), ShouldBeNil)

			f, err = OpenAppend("/logs/today.log")
			So(err, ShouldBeNil)
			_, _ = f.WriteString("second\n")
			So(f.Close(), ShouldBeNil)

			data, err := API().ReadFile("/logs/today.log")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "first\nsecond\n")
		})
	})
}
