package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type ecs struct{}

func (e *ecs) Name() string {
	return "ecs"
}

func (e *ecs) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "ecs")
}

func (e *ecs) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	detailType := env.GetString("detail-type", "")
	status := env.GetString("detail.lastStatus", "")
	service := env.GetString("detail.group", "")

	serviceLink := slackmsg.Link(service, consoleLink(env, rc, "/ecs/home"))

	color := rc.Palette.Neutral
	title := fmt.Sprintf("%s - %s - %s", service, detailType, status)
	switch status {
	case "RUNNING":
		title = serviceLink + " is running"
		color = rc.Palette.Ok
	case "STOPPED":
		title = fmt.Sprintf("%s was stopped: %s", serviceLink, env.GetString("detail.stoppedReason", ""))
		color = rc.Palette.Warning
	}

	fields := []slackmsg.Field{}
	if status != "" {
		fields = append(fields, short("Status", status))
	}
	fields = append(
		fields,
		short("Service", service),
		short("Logs", slackmsg.Link("View Logs", consoleLink(env, rc, "/cloudwatch/home#logs:"))))

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "Amazon ECS - " + detailType,
		Fallback:   fmt.Sprintf("%s %s", service, status),
		Color:      color,
		Title:      title,
		Fields:     fields,
		MrkdwnIn:   []string{"title", "text"},
		Ts:         epochAt(env, "time"),
	}), nil
}
