package interpreters

import (
	"context"
	"fmt"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type awsHealth struct{}

func (a *awsHealth) Name() string {
	return "aws-health"
}

func (a *awsHealth) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "health")
}

func (a *awsHealth) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	text := healthDescription(env)

	// categories: issue | accountNotification | scheduledChange
	color := rc.Palette.Accent
	if env.GetString("detail.eventTypeCategory", "") == "issue" {
		color = rc.Palette.Warning
	}

	startTime := env.GetString("detail.startTime", "")
	endTime := env.GetString("detail.endTime", "")

	fields := []slackmsg.Field{
		short("Account ID", env.AccountId()),
	}
	if service := env.GetString("detail.service", ""); service != "" {
		fields = append(fields, short("Service", service))
	}
	if startTime != "" {
		fields = append(fields, short("Start Time", humanTime(startTime)))
	}
	if endTime != "" {
		fields = append(fields, short("End Time", humanTime(endTime)))
	}

	entities := []string{}
	for i := 0; env.Has(fmt.Sprintf("detail.affectedEntities[%d]", i)); i++ {
		entities = append(entities, env.GetString(fmt.Sprintf("detail.affectedEntities[%d].entityValue", i), ""))
	}
	if len(entities) > 0 {
		fields = append(fields, long("Affected Entities", strings.Join(entities, "\n")))
	}

	ts := epochAt(env, "detail.startTime")
	if ts == 0 {
		ts = epochAt(env, "time")
	}

	return rendered(env, rc, slackmsg.Attachment{
		Fallback: text,
		Color:    color,
		Title:    env.GetString("detail-type", ""),
		Text:     text,
		Fields:   fields,
		Ts:       ts,
	}), nil
}

// english if available, else the first language
func healthDescription(env *awsevent.Envelope) string {
	first := ""
	for i := 0; env.Has(fmt.Sprintf("detail.eventDescription[%d]", i)); i++ {
		prefix := fmt.Sprintf("detail.eventDescription[%d].", i)
		description := env.GetString(prefix+"latestDescription", "")

		if env.GetString(prefix+"language", "") == "en_US" && description != "" {
			return description
		}

		if i == 0 {
			first = description
		}
	}

	return first
}
