package nav

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRoutes(t *testing.T) {
	Convey("Given a media URI with reserved characters", t, func() {
		uri := "file:///videos/My Clip (2024)/a&b.mp4"

		Convey("The player route encodes it into a single segment", func() {
			route := PlayerRoute(uri)
			So(route, ShouldStartWith, "player/")
			So(strings.Count(route, "/"), ShouldEqual, 1)
		})

		Convey("Parsing the route decodes it again", func() {
			r, err := Parse(PlayerRoute(uri))
			So(err, ShouldBeNil)
			So(r.IsPlayer(), ShouldBeTrue)
			So(r.URI.MustGet(), ShouldEqual, uri)
			So(r.String(), ShouldEqual, PlayerRoute(uri))
		})
	})

	Convey("A literal plus sign survives encoding and decoding", t, func() {
		uri := "file:///videos/c++ talk+qa.mp4"
		r, err := Parse(PlayerRoute(uri))
		So(err, ShouldBeNil)
		So(r.URI.MustGet(), ShouldEqual, uri)

		r, err = Parse("player/file%3A%2F%2F%2Fv%2Fa+b.mp4")
		So(err, ShouldBeNil)
		So(r.URI.MustGet(), ShouldEqual, "file:///v/a+b.mp4")
	})

	Convey("The library route has no argument", t, func() {
		r, err := Parse(LibraryRoute())
		So(err, ShouldBeNil)
		So(r.IsPlayer(), ShouldBeFalse)
		So(r.URI.IsAbsent(), ShouldBeTrue)
		So(r.String(), ShouldEqual, "library")
	})

	Convey("Malformed routes are rejected", t, func() {
		for _, bad := range []string{"", "player", "player/", "player/%zz", "library/x", "settings"} {
			_, err := Parse(bad)
			So(err, ShouldNotBeNil)
		}
	})
}
