package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type codeBuild struct{}

func (c *codeBuild) Name() string {
	return "codebuild"
}

func (c *codeBuild) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "codebuild")
}

func (c *codeBuild) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	buildStatus := env.GetString("detail.build-status", "")
	project := env.GetString("detail.project-name", "")

	projectLink := slackmsg.Link(project, consoleLink(env, rc, "/codebuild/home#/projects/"+project+"/view"))
	logsUrl := consoleLink(env, rc, "/cloudwatch/home#logEventViewer:group=/aws/codebuild/"+project+";start=PT5M")

	color := rc.Palette.Neutral
	title := project
	switch buildStatus {
	case "SUCCEEDED":
		title = projectLink + " has finished building"
		color = rc.Palette.Ok
	case "STOPPED":
		title = projectLink + " was stopped"
		color = rc.Palette.Warning
	case "FAILED":
		title = projectLink + " has failed to build"
		color = rc.Palette.Critical
	case "IN_PROGRESS":
		title = projectLink + " has started building"
	}

	fields := []slackmsg.Field{}
	if buildStatus != "" {
		fields = append(fields, short("Status", buildStatus))
	}
	fields = append(fields, short("Logs", slackmsg.Link("View Logs", logsUrl)))

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "AWS CodeBuild",
		Fallback:   fmt.Sprintf("%s %s", project, buildStatus),
		Color:      color,
		Title:      title,
		Fields:     fields,
		MrkdwnIn:   []string{"title", "text"},
		Ts:         epochAt(env, "time"),
	}), nil
}
