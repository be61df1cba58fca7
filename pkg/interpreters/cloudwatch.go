package interpreters

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type cloudWatchAlarm struct {
	cw MetricStatisticsGetter // nil = no charts
}

func (c *cloudWatchAlarm) Name() string {
	return "cloudwatch-alarm"
}

func (c *cloudWatchAlarm) Matches(env *awsevent.Envelope) bool {
	return env.Has("AlarmName") && env.Has("AlarmDescription")
}

func (c *cloudWatchAlarm) Render(ctx context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	alarmName := env.GetString("AlarmName", "")
	newState := env.GetString("NewStateValue", "")
	reason := env.GetString("NewStateReason", "")

	color := rc.Palette.Neutral
	switch newState {
	case "OK":
		color = rc.Palette.Ok
	case "ALARM":
		color = rc.Palette.Critical
	case "INSUFFICIENT_DATA":
		color = rc.Palette.Warning
	}

	attachment := slackmsg.Attachment{
		Fallback:   fmt.Sprintf("%s state is now %s:\n%s", alarmName, newState, reason),
		Color:      color,
		AuthorName: "Amazon CloudWatch Alarm",
		Title:      alarmName,
		TitleLink:  consoleLink(env, rc, "/cloudwatch/home#alarmsV2:alarm/"+alarmName),
		Text:       reason,
		Fields: []slackmsg.Field{
			short("Account ID", env.GetString("AWSAccountId", "")),
			short("Region", env.GetString("Region", "")),
			short("Old State", env.GetString("OldStateValue", "")),
			short("New State", newState),
		},
		Ts: epochAt(env, "StateChangeTime"),
	}

	if c.cw != nil {
		if trigger, ok := alarmTriggerFrom(env); ok {
			imageUrl, err := renderAlarmChart(ctx, c.cw, trigger, rc.Now)
			if err != nil { // chart is a nice-to-have
				rc.Logl.Error.Printf("%s: chart: %v", alarmName, err)
			} else {
				attachment.ImageUrl = imageUrl
			}
		}
	}

	return rendered(env, rc, attachment), nil
}

// composite and metric math alarms have no single metric to chart
func alarmTriggerFrom(env *awsevent.Envelope) (alarmTrigger, bool) {
	trigger := alarmTrigger{
		MetricName: env.GetString("Trigger.MetricName", ""),
		Namespace:  env.GetString("Trigger.Namespace", ""),
		Statistic:  env.GetString("Trigger.Statistic", ""),
		Unit:       env.GetString("Trigger.Unit", ""),
	}

	if trigger.MetricName == "" || trigger.Namespace == "" {
		return trigger, false
	}

	period, err := strconv.ParseInt(env.GetString("Trigger.Period", "60"), 10, 64)
	if err != nil {
		return trigger, false
	}
	trigger.Period = period

	for i := 0; ; i++ {
		prefix := fmt.Sprintf("Trigger.Dimensions[%d].", i)

		if !env.Has(prefix + "name") {
			break
		}

		trigger.Dimensions = append(trigger.Dimensions, &cloudwatch.Dimension{
			Name:  aws.String(env.GetString(prefix+"name", "")),
			Value: aws.String(env.GetString(prefix+"value", "")),
		})
	}

	return trigger, true
}
