package interpreters

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

const (
	genericMaxFields = 8
)

// promoted to title / author instead of being shown in the body
var transportKeys = []string{"source", "region", "account", "detail-type", "time"}

// last resort for everything nobody else understood. must stay total: never declines.
type generic struct{}

func (g *generic) Name() string {
	return "generic"
}

func (g *generic) Matches(*awsevent.Envelope) bool {
	return true
}

func (g *generic) CatchesAll() {}

func (g *generic) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	title := env.GetString("detail-type", "")
	if title == "" {
		title = env.Subject()
	}
	if title == "" {
		title = "Raw Event"
	}

	attachment := slackmsg.Attachment{
		Color:      rc.Palette.Neutral,
		AuthorName: env.GetString("source", "<unknown>"),
		Title:      title,
	}

	switch message := env.Message().(type) {
	case string:
		attachment.Text = message
		attachment.Fallback = message
	case map[string]interface{}:
		attachment.Fallback = indentedJson(message)

		remaining := env.Remaining(transportKeys...)
		if len(remaining) >= 1 && len(remaining) <= genericMaxFields {
			attachment.Fields = fieldsSortedByKey(remaining)
		} else if len(remaining) > genericMaxFields {
			attachment.Text = indentedJson(remaining)
		}
	default:
		attachment.Text = indentedJson(message)
		attachment.Fallback = attachment.Text
	}

	return rendered(env, rc, attachment), nil
}

func fieldsSortedByKey(obj map[string]interface{}) []slackmsg.Field {
	keys := []string{}
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := []slackmsg.Field{}
	for _, key := range keys {
		fields = append(fields, short(key, awsevent.Stringify(obj[key])))
	}

	return fields
}

func indentedJson(value interface{}) string {
	asJson, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return ""
	}

	return string(asJson)
}
