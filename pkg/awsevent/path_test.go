package awsevent

import (
	"testing"

	"github.com/function61/gokit/assert"
)

func TestLookup(t *testing.T) {
	root, err := DecodeJson([]byte(`{
  "Event Source": "db-instance",
  "detail": {
    "build-status": "FAILED",
    "attempts": [
      {"container": {"logStreamName": "job/default/123"}}
    ],
    "count": 7,
    "retried": false,
    "nothing": null
  }
}`))
	assert.Ok(t, err)

	get := func(path string) string {
		value, found := lookup(root, path)
		if !found {
			return "<not found>"
		}
		str, ok := asString(value)
		if !ok {
			return "<null>"
		}
		return str
	}

	tcs := []struct {
		input  string
		output string
	}{
		{`["Event Source"]`, "db-instance"},
		{`detail.build-status`, "FAILED"},
		{`detail.attempts[0].container.logStreamName`, "job/default/123"},
		{`detail.attempts[0]["container"].logStreamName`, "job/default/123"},
		{`detail.attempts[1].container`, "<not found>"},
		{`detail.count`, "7"},
		{`detail.retried`, "false"},
		{`detail.nothing`, "<null>"},
		{`detail.count.deeper`, "<not found>"},
		{`detail.attempts[x]`, "<not found>"},
		{`detail.attempts[0`, "<not found>"},
		{`missing.path[3].foo`, "<not found>"},
		{`detail.attempts[0].container`, `{"logStreamName":"job/default/123"}`},
	}

	for _, tc := range tcs {
		tc := tc // pin
		t.Run(tc.input, func(t *testing.T) {
			assert.EqualString(t, get(tc.input), tc.output)
		})
	}
}

func TestParseTime(t *testing.T) {
	tcs := []struct {
		input  string
		output string
	}{
		{"2017-01-12T16:30:42.236+0000", "2017-01-12T16:30:42.236Z"},
		{"2019-07-04T13:08:23Z", "2019-07-04T13:08:23Z"},
		{"1970-01-01T00:00:00.000Z", "1970-01-01T00:00:00Z"},
		{"2020-02-20 14:02:00", "2020-02-20T14:02:00Z"},
		{"1582207320", "2020-02-20T14:02:00Z"},
		{"1582207320000", "2020-02-20T14:02:00Z"},
		{"yesterday", "<invalid>"},
		{"", "<invalid>"},
	}

	for _, tc := range tcs {
		tc := tc // pin
		t.Run(tc.input, func(t *testing.T) {
			ts, ok := ParseTime(tc.input)
			output := "<invalid>"
			if ok {
				output = ts.Format("2006-01-02T15:04:05.999Z07:00")
			}
			assert.EqualString(t, output, tc.output)
		})
	}
}
