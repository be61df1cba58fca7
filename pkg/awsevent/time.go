package awsevent

import (
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700", // CloudWatch alarm StateChangeTime
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.UnixDate, // Elastic Beanstalk
}

// epoch values above this are assumed to be milliseconds
const epochMillisThreshold = 100000000000

// returns false rather than a zero/invalid time if input is not recognized
func ParseTime(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, false
	}

	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, input); err == nil {
			return ts.UTC(), true
		}
	}

	if epoch, err := strconv.ParseInt(input, 10, 64); err == nil && epoch > 0 {
		if epoch > epochMillisThreshold {
			return time.Unix(0, epoch*int64(time.Millisecond)).UTC(), true
		}
		return time.Unix(epoch, 0).UTC(), true
	}

	return time.Time{}, false
}
