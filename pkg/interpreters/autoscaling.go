package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type autoScaling struct{}

func (a *autoScaling) Name() string {
	return "autoscaling"
}

func (a *autoScaling) Matches(env *awsevent.Envelope) bool {
	return env.Has("AutoScalingGroupARN")
}

func (a *autoScaling) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	accountId := env.GetString("AccountId", "")
	groupName := env.GetString("AutoScalingGroupName", "")
	service := env.GetString("Service", "")
	eventName := env.GetString("Event", "")

	// arn:aws:autoscaling:{region}:{accountId}:autoScalingGroup:{group-id}:autoScalingGroupName/{group-name}
	region := rc.DefaultRegion
	if arn, ok := awsevent.ParseArn(env.GetString("AutoScalingGroupARN", "")); ok && arn.Region != "" {
		region = arn.Region
	}

	text := fmt.Sprintf("Auto Scaling triggered %s for service %s.", eventName, service)

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: fmt.Sprintf("AWS AutoScaling (%s - %s)", region, accountId),
		AuthorLink: fmt.Sprintf("https://%s.signin.aws.amazon.com/console/ec2?region=%s", accountId, region),
		Title:      fmt.Sprintf("%s - %s", groupName, eventName),
		TitleLink:  awsevent.ConsoleUrl(region, "/ec2/autoscaling/home#AutoScalingGroups:id="+groupName),
		Text:       text,
		Fallback:   text,
		Color:      rc.Palette.Neutral,
		Fields: []slackmsg.Field{
			short("Service", service),
			short("Event", eventName),
		},
		Ts: epochAt(env, "Time"),
	}), nil
}
