package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type codePipeline struct{}

func (c *codePipeline) Name() string {
	return "codepipeline"
}

// approvals have their own interpreter
func (c *codePipeline) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "codepipeline") && !(env.Has("approval") && env.Has("consoleLink"))
}

func (c *codePipeline) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	pipeline := env.GetString("detail.pipeline", "<missing-pipeline>")
	state := env.GetString("detail.state", "")
	stage := env.GetString("detail.stage", "")
	action := env.GetString("detail.action", "")

	color := rc.Palette.Neutral
	switch state {
	case "STARTED":
		color = rc.Palette.Accent
	case "SUCCEEDED":
		color = rc.Palette.Ok
	case "FAILED":
		color = rc.Palette.Critical
	case "CANCELLED":
		color = rc.Palette.Warning
	}

	authorName := "AWS CodePipeline"
	if accountId := env.AccountId(); accountId != "" {
		authorName = fmt.Sprintf("AWS CodePipeline (%s)", accountId)
	}

	attachment := slackmsg.Attachment{
		AuthorName: authorName,
		Color:      color,
		Title:      pipeline + " >> " + state,
		TitleLink:  consoleLink(env, rc, "/codepipeline/home#/view/"+pipeline),
		Text:       env.GetString("detail-type", ""),
		Ts:         epochAt(env, "time"),
	}

	// pipeline-level events have no stage
	if stage == "" {
		attachment.Fallback = fmt.Sprintf("%s >> %s", pipeline, state)
	} else {
		attachment.Fallback = fmt.Sprintf("%s >> %s is %s", pipeline, stage, state)
		attachment.Fields = nonEmpty(
			short("Stage", stage),
			short("Action", action),
			short("State", state))

		if env.GetString("detail.type.provider", "") == "Manual" && env.GetString("detail.type.category", "") == "Approval" {
			attachment.Title = fmt.Sprintf("%s >> APPROVAL REQUIRED for %s", pipeline, stage)
		}
	}

	return rendered(env, rc, attachment), nil
}
