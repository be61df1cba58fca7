package interpreters

import (
	"context"
	"fmt"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

var (
	beanstalkCritical = []string{
		" to RED",
		" to Severe",
		" but with errors",
		"You do not have permission",
		"Failed to deploy application",
		"Failed to deploy configuration",
		"Your quota allows for 0 more running instance",
		"Unsuccessful command execution",
	}
	beanstalkWarning = []string{
		" to YELLOW",
		" to Warning",
		" to Degraded",
		" to Info",
		"Removed instance ",
		"Adding instance ",
		" aborted operation.",
		"some instances may have deployed the new application version",
	}
)

type beanstalk struct{}

func (b *beanstalk) Name() string {
	return "beanstalk"
}

func (b *beanstalk) Matches(env *awsevent.Envelope) bool {
	return strings.HasPrefix(env.Subject(), "AWS Elastic Beanstalk Notification")
}

func (b *beanstalk) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	body, isString := env.Message().(string)
	if !isString {
		return interpreter.Decline("message is not text"), nil
	}

	fields := parseKeyValueLines(body, ":", false)

	for _, required := range []string{"Message", "Application", "Environment", "Timestamp"} {
		if _, has := fields[required]; !has {
			return interpreter.Decline("missing " + required), nil
		}
	}

	text := fields["Message"]
	application := fields["Application"]
	environment := fields["Environment"]

	// warning wins if both match
	color := rc.Palette.Ok
	if containsAny(text, beanstalkCritical...) {
		color = rc.Palette.Critical
	}
	if containsAny(text, beanstalkWarning...) {
		color = rc.Palette.Warning
	}

	attachment := slackmsg.Attachment{
		Fallback:   fmt.Sprintf("%s / %s: %s", application, environment, text),
		Color:      color,
		AuthorName: "AWS Elastic Beanstalk",
		Title:      fmt.Sprintf("%s / %s", application, environment),
		TitleLink:  fields["Environment URL"],
		Text:       text,
		Fields: []slackmsg.Field{
			short("Application", application),
			short("Environment", environment),
		},
	}

	if ts, ok := awsevent.ParseTime(fields["Timestamp"]); ok {
		attachment.Ts = slackmsg.EpochSeconds(ts)
	}

	return rendered(env, rc, attachment), nil
}
