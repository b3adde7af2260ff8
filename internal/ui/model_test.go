package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNotifications(t *testing.T) {
	Convey("Given a notifier", t, func() {
		m := &Model{}
		So(m.View("screen"), ShouldEqual, "screen")

		Convey("A notification is appended to the last line", func() {
			msg := Notify("volume 60%")()
			So(m.Update(msg), ShouldNotBeNil)
			So(m.Text(), ShouldEqual, "volume 60%")
			So(m.View("title\nbody"), ShouldStartWith, "title\nbody  ")
			So(m.View("title\nbody"), ShouldContainSubstring, "volume 60%")

			Convey("Its own timer clears it", func() {
				m.Update(ClearNotificationMsg{seq: m.seq})
				So(m.Text(), ShouldBeEmpty)
			})

			Convey("An older timer does not clear a newer notification", func() {
				stale := m.seq
				m.Update(NotificationMsg{Text: "paused"})
				m.Update(ClearNotificationMsg{seq: stale})
				So(m.Text(), ShouldEqual, "paused")
			})
		})
	})
}
