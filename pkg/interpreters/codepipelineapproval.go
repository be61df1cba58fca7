package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type codePipelineApproval struct{}

func (c *codePipelineApproval) Name() string {
	return "codepipeline-approval"
}

func (c *codePipelineApproval) Matches(env *awsevent.Envelope) bool {
	return env.Has("approval") && env.Has("consoleLink")
}

func (c *codePipelineApproval) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	pipeline := env.GetString("approval.pipelineName", "")
	stage := env.GetString("approval.stageName", "")
	approveLink := env.GetString("approval.approvalReviewLink", "")

	fields := nonEmpty(
		short("Review Link", env.GetString("approval.externalEntityLink", "")),
		short("Approval Link", approveLink))
	if expires, ok := awsevent.ParseTime(env.GetString("approval.expires", "")); ok {
		fields = append(fields, short("Approve By", formatTime(expires)))
	}

	return rendered(env, rc, slackmsg.Attachment{
		Fallback:   fmt.Sprintf("%s >> APPROVAL REQUIRED: %s", pipeline, approveLink),
		Color:      rc.Palette.Warning,
		AuthorName: "AWS CodePipeline :: APPROVAL REQUIRED",
		Title:      fmt.Sprintf("%s >> APPROVAL REQUIRED for %s", pipeline, stage),
		TitleLink:  env.GetString("consoleLink", ""),
		Text:       env.GetString("approval.customData", ""),
		Fields:     fields,
	}), nil
}
