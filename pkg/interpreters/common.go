// Format-specific interpreters for the AWS services that notify via SNS or EventBridge
package interpreters

import (
	"strings"
	"time"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

func short(title string, value string) slackmsg.Field {
	return slackmsg.Field{Title: title, Value: value, Short: true}
}

func long(title string, value string) slackmsg.Field {
	return slackmsg.Field{Title: title, Value: value}
}

// skips fields without a value, like the console would
func nonEmpty(fields ...slackmsg.Field) []slackmsg.Field {
	filtered := []slackmsg.Field{}
	for _, field := range fields {
		if field.Value != "" {
			filtered = append(filtered, field)
		}
	}
	return filtered
}

// 0 lets AttachmentWithDefaults() pick the envelope time
func epochAt(env *awsevent.Envelope, path string) int64 {
	ts, ok := awsevent.ParseTime(env.GetString(path, ""))
	if !ok {
		return 0
	}

	return slackmsg.EpochSeconds(ts)
}

func rendered(env *awsevent.Envelope, rc interpreter.RenderContext, attachment slackmsg.Attachment) interpreter.Result {
	return interpreter.Rendered(env.AttachmentWithDefaults(attachment, rc.Now))
}

func sourceIs(env *awsevent.Envelope, source string) bool {
	return env.GetString("source", "") == "aws."+source
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format("2006-01-02 15:04:05 MST")
}

// "2020-02-20T14:02:00Z" => "2020-02-20 14:02:00 UTC". unparseable values pass through.
func humanTime(value string) string {
	ts, ok := awsevent.ParseTime(value)
	if !ok {
		return value
	}

	return formatTime(ts)
}

// SNS notifications of some services are "key: value" or "key='value'" lines instead of JSON
func parseKeyValueLines(body string, separator string, unquote bool) map[string]string {
	values := map[string]string{}

	for _, line := range strings.Split(body, "\n") {
		pos := strings.Index(line, separator)
		if pos == -1 {
			continue
		}

		key := strings.TrimSpace(line[:pos])
		value := strings.TrimSpace(line[pos+len(separator):])
		if unquote {
			value = strings.Trim(value, "'")
		}

		if key != "" {
			values[key] = value
		}
	}

	return values
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func consoleLink(env *awsevent.Envelope, rc interpreter.RenderContext, path string) string {
	return awsevent.ConsoleUrl(env.Region(rc.DefaultRegion), path)
}
