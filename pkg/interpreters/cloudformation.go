package interpreters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type stackStatus struct {
	title string
	color func(slackmsg.Palette) string
}

func colorCritical(p slackmsg.Palette) string { return p.Critical }
func colorWarning(p slackmsg.Palette) string  { return p.Warning }
func colorOk(p slackmsg.Palette) string       { return p.Ok }
func colorAccent(p slackmsg.Palette) string   { return p.Accent }

var stackStatuses = map[string]stackStatus{
	"CREATE_COMPLETE":                              {"Stack creation complete", colorOk},
	"CREATE_IN_PROGRESS":                           {"Stack creation in progress", colorAccent},
	"CREATE_FAILED":                                {"Stack creation failed", colorCritical},
	"DELETE_COMPLETE":                              {"Stack deletion complete", colorOk},
	"DELETE_FAILED":                                {"Stack deletion failed", colorCritical},
	"DELETE_IN_PROGRESS":                           {"Stack deletion in progress", colorAccent},
	"REVIEW_IN_PROGRESS":                           {"Stack review in progress", colorAccent},
	"ROLLBACK_COMPLETE":                            {"Stack rollback complete", colorWarning},
	"ROLLBACK_FAILED":                              {"Stack rollback failed", colorCritical},
	"ROLLBACK_IN_PROGRESS":                         {"Stack rollback in progress", colorWarning},
	"UPDATE_COMPLETE":                              {"Stack update complete", colorOk},
	"UPDATE_COMPLETE_CLEANUP_IN_PROGRESS":          {"Stack update complete, cleanup in progress", colorAccent},
	"UPDATE_IN_PROGRESS":                           {"Stack update in progress", colorAccent},
	"UPDATE_ROLLBACK_COMPLETE":                     {"Stack update rollback complete", colorWarning},
	"UPDATE_ROLLBACK_COMPLETE_CLEANUP_IN_PROGRESS": {"Stack update rollback complete, cleanup in progress", colorWarning},
	"UPDATE_ROLLBACK_FAILED":                       {"Stack update rollback failed", colorCritical},
	"UPDATE_ROLLBACK_IN_PROGRESS":                  {"Stack update rollback in progress", colorWarning},
}

type cloudFormation struct{}

func (c *cloudFormation) Name() string {
	return "cloudformation"
}

func (c *cloudFormation) Matches(env *awsevent.Envelope) bool {
	return strings.HasPrefix(env.Subject(), "AWS CloudFormation Notification")
}

func (c *cloudFormation) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	body, isString := env.Message().(string)
	if !isString {
		return interpreter.Decline("message is not text"), nil
	}

	fields := parseKeyValueLines(body, "=", true)

	logicalResourceId, hasLogicalId := fields["LogicalResourceId"]
	stackName, hasStackName := fields["StackName"]
	if !hasLogicalId || !hasStackName {
		return interpreter.Decline("missing LogicalResourceId or StackName"), nil
	}

	// every resource in a stack emits events. only the stack's own are interesting.
	if logicalResourceId != stackName {
		return interpreter.Suppress("resource event"), nil
	}

	resourceStatus := fields["ResourceStatus"]
	stackId := fields["StackId"]

	title := resourceStatus
	color := rc.Palette.Neutral
	if status, known := stackStatuses[resourceStatus]; known {
		title = status.title
		color = status.color(rc.Palette)
	}

	region := rc.DefaultRegion
	if arn, ok := awsevent.ParseArn(stackId); ok && arn.Region != "" {
		region = arn.Region
	}

	attachment := slackmsg.Attachment{
		AuthorName: "AWS CloudFormation",
		Title:      title,
		TitleLink:  awsevent.ConsoleUrl(region, "/cloudformation/home#stacks/"+url.QueryEscape(stackId)+"/events"),
		Fallback:   fmt.Sprintf("%s: %s", stackName, title),
		Color:      color,
		Fields: []slackmsg.Field{
			short("Stack Name", stackName),
			short("Status", resourceStatus),
		},
	}

	if reason := fields["ResourceStatusReason"]; reason != "" {
		attachment.Text = reason
	}

	if ts, ok := awsevent.ParseTime(fields["Timestamp"]); ok {
		attachment.Ts = slackmsg.EpochSeconds(ts)
	}

	return rendered(env, rc, attachment), nil
}
