package workflow

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestUnwrap(t *testing.T) {
	Convey("unwrap normalizes array-or-object responses", t, func() {
		Convey("plain object passes through", func() {
			obj, err := unwrap([]byte(`{"id":"a1"}`))
			So(err, ShouldBeNil)
			So(string(obj), ShouldEqual, `{"id":"a1"}`)
		})

		Convey("one-element array yields the element", func() {
			obj, err := unwrap([]byte(`[{"id":"a1"}]`))
			So(err, ShouldBeNil)
			So(string(obj), ShouldEqual, `{"id":"a1"}`)
		})

		Convey("multi-element array yields the first element", func() {
			obj, err := unwrap([]byte(`[{"id":"a1"},{"id":"a2"}]`))
			So(err, ShouldBeNil)
			So(string(obj), ShouldEqual, `{"id":"a1"}`)
		})

		Convey("leading whitespace is tolerated", func() {
			obj, err := unwrap([]byte("\n\t [{\"id\":\"a1\"}]"))
			So(err, ShouldBeNil)
			So(string(obj), ShouldEqual, `{"id":"a1"}`)
		})

		Convey("empty body is malformed", func() {
			_, err := unwrap([]byte(""))
			So(err, ShouldEqual, ErrMalformedResponse)
		})

		Convey("empty array is malformed", func() {
			_, err := unwrap([]byte(`[]`))
			So(err, ShouldEqual, ErrMalformedResponse)
		})

		Convey("broken array is malformed", func() {
			_, err := unwrap([]byte(`[{"id":`))
			So(err, ShouldEqual, ErrMalformedResponse)
		})
	})
}

func TestIsValidVideoURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"https URL", "https://cdn.example.com/v/final.mp4", true},
		{"http URL", "http://cdn.example.com/v/final.mp4", true},
		{"empty string", "", false},
		{"ftp scheme", "ftp://x", false},
		{"data URI", "data:video/mp4;base64,AAAA", false},
		{"relative path", "/videos/final.mp4", false},
		{"scheme without host", "https://", false},
		{"bare word", "final.mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidVideoURL(tt.raw); got != tt.want {
				t.Errorf("IsValidVideoURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
