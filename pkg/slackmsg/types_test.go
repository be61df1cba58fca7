package slackmsg

import (
	"testing"
	"time"

	"github.com/function61/gokit/assert"
)

func TestIsEmpty(t *testing.T) {
	var nilMsg *Message

	assert.Assert(t, nilMsg.IsEmpty())
	assert.Assert(t, (&Message{}).IsEmpty())
	assert.Assert(t, (&Message{Channel: "#ops", Attachments: []Attachment{{Color: "good"}}}).IsEmpty())
	assert.Assert(t, !(&Message{Text: "hello"}).IsEmpty())
	assert.Assert(t, !Single(Attachment{Title: "cpu-high"}).IsEmpty())
}

func TestSerialization(t *testing.T) {
	msg := Single(Attachment{
		Color: DefaultPalette().Critical,
		Title: "cpu-high",
		Fields: []Field{
			{Title: "Region", Value: "eu-west-1", Short: true},
			{Title: "Caller ARN", Value: "arn:aws:iam::123456789012:user/joonas"},
		},
		Ts: EpochSeconds(time.Date(2020, 2, 20, 14, 2, 0, 0, time.UTC)),
	})
	msg.Channel = "#alerts"

	assert.EqualJson(t, msg, `{
  "channel": "#alerts",
  "attachments": [
    {
      "color": "danger",
      "title": "cpu-high",
      "fields": [
        {
          "title": "Region",
          "value": "eu-west-1",
          "short": true
        },
        {
          "title": "Caller ARN",
          "value": "arn:aws:iam::123456789012:user/joonas",
          "short": false
        }
      ],
      "ts": 1582207320
    }
  ]
}`)
}
