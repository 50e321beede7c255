package phone_test

import (
	"testing"

	"github.com/palpitesia/palpites-backend/internal/phone"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw phone numbers", t, func() {
		Convey("National numbers get the country code", func() {
			n, ok := phone.Normalize("(61) 99887-7665")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, "5561998877665")
		})

		Convey("Numbers already carrying 55 are kept", func() {
			n, ok := phone.Normalize("+55 61 9988-7766")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, "556199887766")
		})

		Convey("Trunk zeros are dropped", func() {
			n, ok := phone.Normalize("061 99887-7665")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, "5561998877665")
		})

		Convey("A national number whose DDD is 55 is not mistaken for a country code", func() {
			n, ok := phone.Normalize("55 99123-4567")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, "5555991234567")
		})

		Convey("Short or empty input is rejected", func() {
			_, ok := phone.Normalize("99887766")
			So(ok, ShouldBeFalse)
			_, ok = phone.Normalize("desconhecido")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given a stored number 556199887766", t, func() {
		stored := "556199887766"

		Convey("An inbound number missing the country code matches", func() {
			So(phone.Match("6199887766", stored), ShouldBeTrue)
		})

		Convey("An inbound number with a leading zero matches", func() {
			So(phone.Match("096199887766", stored), ShouldBeTrue)
		})

		Convey("The same number formatted differently matches", func() {
			So(phone.Match("+55 (61) 9988-7766", stored), ShouldBeTrue)
		})

		Convey("A different number does not match", func() {
			So(phone.Match("556188776655", stored), ShouldBeFalse)
		})

		Convey("Empty numbers never match", func() {
			So(phone.Match("", stored), ShouldBeFalse)
			So(phone.Match(stored, ""), ShouldBeFalse)
		})
	})
}

func TestMask(t *testing.T) {
	Convey("Mask hides the last four digits", t, func() {
		So(phone.Mask("+55 61 99887-7665"), ShouldEqual, "556199887****")
		So(phone.Mask("123"), ShouldEqual, "123")
	})
}
