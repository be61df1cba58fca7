package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

// CodeDeploy notifies either as an EventBridge event or as a JSON document via SNS trigger.
// they use different vocabularies for the same states.
type codeDeploy struct{}

func (c *codeDeploy) Name() string {
	return "codedeploy"
}

func (c *codeDeploy) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "codedeploy") || (env.Has("deploymentId") && env.Has("deploymentGroupName"))
}

func (c *codeDeploy) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	var state, deploymentGroup, deploymentId, application string
	var ts int64

	if sourceIs(env, "codedeploy") {
		state = env.GetString("detail.state", "")
		if mapped, found := codeDeployEventStates[state]; found {
			state = mapped
		}
		deploymentGroup = env.GetString("detail.deploymentGroup", "")
		deploymentId = env.GetString("detail.deploymentId", "")
		application = env.GetString("detail.application", "")
		ts = epochAt(env, "time")
	} else {
		state = env.GetString("status", "")
		deploymentGroup = env.GetString("deploymentGroupName", "")
		deploymentId = env.GetString("deploymentId", "")
		application = env.GetString("applicationName", "")
		// timestamp from SNS
	}

	baseTitle := "CodeDeploy Application " + application
	statusLink := slackmsg.Link(baseTitle, consoleLink(env, rc, "/codedeploy/home#/deployments/"+deploymentId))

	color := rc.Palette.Neutral
	title := baseTitle
	switch state {
	case "SUCCEEDED":
		title = statusLink + " has finished"
		color = rc.Palette.Ok
	case "STOPPED":
		title = statusLink + " was stopped"
		color = rc.Palette.Warning
	case "FAILED":
		title = statusLink + " has failed"
		color = rc.Palette.Critical
	case "CREATED":
		title = statusLink + " has started deploying"
	}

	fields := []slackmsg.Field{}
	if state != "" {
		fields = append(fields, short("Status", state))
	}
	fields = append(fields, short("DeploymentGroup", deploymentGroup))

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "AWS CodeDeploy Notification",
		Fallback:   fmt.Sprintf("%s %s", baseTitle, state),
		Color:      color,
		Title:      title,
		Fields:     fields,
		MrkdwnIn:   []string{"title", "text"},
		Ts:         ts,
	}), nil
}

// EventBridge state => SNS trigger status
var codeDeployEventStates = map[string]string{
	"START":   "CREATED",
	"SUCCESS": "SUCCEEDED",
	"FAILURE": "FAILED",
	"STOP":    "STOPPED",
	"READY":   "READY",
}
