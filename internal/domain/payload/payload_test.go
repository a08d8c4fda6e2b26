package payload_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/okian/demo-microservice/internal/domain/payload"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLocalDateTime(t *testing.T) {
	Convey("Given a local date-time", t, func() {
		at := time.Date(2024, time.March, 5, 7, 8, 9, 120_000_000, time.Local)
		ts := payload.NewLocalDateTime(at)

		Convey("When formatting", func() {
			Convey("Then it should drop trailing fraction zeros and carry no offset", func() {
				So(ts.String(), ShouldEqual, "2024-03-05T07:08:09.12")
			})
		})

		Convey("When the fraction is zero", func() {
			whole := payload.NewLocalDateTime(time.Date(2024, time.March, 5, 7, 8, 9, 0, time.Local))

			Convey("Then the fraction should be omitted", func() {
				So(whole.String(), ShouldEqual, "2024-03-05T07:08:09")
			})
		})

		Convey("When marshalling to JSON", func() {
			b, err := json.Marshal(ts)

			Convey("Then it should be a JSON string", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `"2024-03-05T07:08:09.12"`)
			})

			Convey("And it should unmarshal back to the same instant", func() {
				var back payload.LocalDateTime
				So(json.Unmarshal(b, &back), ShouldBeNil)
				So(back.Equal(at), ShouldBeTrue)
			})
		})

		Convey("When unmarshalling garbage", func() {
			var back payload.LocalDateTime

			Convey("Then non-strings and bad layouts should be rejected", func() {
				So(json.Unmarshal([]byte(`[2024,3,5]`), &back), ShouldNotBeNil)
				So(json.Unmarshal([]byte(`"05/03/2024"`), &back), ShouldNotBeNil)
			})
		})

		Convey("When parsing a value with an offset", func() {
			_, err := payload.ParseLocalDateTime("2024-03-05T07:08:09Z")

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestPayloadFieldOrder(t *testing.T) {
	Convey("Given the info payload", t, func() {
		info := payload.Info{
			Service:        payload.ServiceName,
			Version:        payload.Version,
			Description:    payload.Description,
			Timestamp:      payload.NewLocalDateTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)),
			RuntimeVersion: "go1.24.6",
			OSName:         "linux",
		}

		Convey("When marshalling", func() {
			b, err := json.Marshal(info)
			So(err, ShouldBeNil)
			s := string(b)

			Convey("Then keys should appear in declaration order", func() {
				keys := []string{`"service"`, `"version"`, `"description"`, `"timestamp"`, `"java.version"`, `"os.name"`}
				last := -1
				for _, k := range keys {
					idx := strings.Index(s, k)
					So(idx, ShouldBeGreaterThan, last)
					last = idx
				}
			})
		})
	})
}

func TestGreetingMessage(t *testing.T) {
	Convey("Given names", t, func() {
		Convey("Then they should be interpolated verbatim", func() {
			So(payload.GreetingMessage("John"), ShouldEqual, "Hello John!")
			So(payload.GreetingMessage(""), ShouldEqual, "Hello !")
			So(payload.GreetingMessage("<b>&"), ShouldEqual, "Hello <b>&!")
			So(payload.GreetingMessage("Zoë Ünal"), ShouldEqual, "Hello Zoë Ünal!")
		})
	})
}
