package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type batch struct{}

func (b *batch) Name() string {
	return "batch"
}

func (b *batch) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "batch")
}

func (b *batch) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	status := env.GetString("detail.status", "")
	jobName := env.GetString("detail.jobName", "")
	logStream := env.GetString("detail.attempts[0].container.logStreamName", "")

	baseTitle := "Batch Job Event " + jobName

	color := rc.Palette.Neutral
	title := baseTitle
	switch status {
	case "SUCCEEDED":
		title = jobName + " succeeded"
		color = rc.Palette.Ok
	case "FAILED":
		title = jobName + " failed"
		color = rc.Palette.Critical
	}

	fields := nonEmpty(
		short("Status", status),
		short("Reason", env.GetString("detail.statusReason", "")))
	if logStream != "" {
		logsUrl := consoleLink(env, rc, "/cloudwatch/home#logEventViewer:group=/aws/batch/job;stream="+logStream+";")

		fields = append(fields, short("Logs", slackmsg.Link("View Logs", logsUrl)))
	}

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "AWS Batch Notification",
		Fallback:   fmt.Sprintf("%s %s", baseTitle, status),
		Color:      color,
		Title:      title,
		Fields:     fields,
		MrkdwnIn:   []string{"title", "text"},
		Ts:         epochAt(env, "time"),
	}), nil
}
