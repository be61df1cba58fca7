package interpreters

import (
	"context"
	"fmt"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

type rds struct{}

func (r *rds) Name() string {
	return "rds"
}

func (r *rds) Matches(env *awsevent.Envelope) bool {
	return env.GetString(`["Event Source"]`, "") == "db-instance"
}

func (r *rds) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	instanceId := env.GetString(`["Source ID"]`, "")
	text := env.GetString(`["Event Message"]`, "")

	return rendered(env, rc, slackmsg.Attachment{
		Fallback:   fmt.Sprintf("%s: %s", instanceId, text),
		Color:      rc.Palette.Accent,
		AuthorName: "Amazon RDS",
		Title:      instanceId,
		TitleLink:  env.GetString(`["Identifier Link"]`, ""),
		Text:       text,
		Ts:         epochAt(env, `["Event Time"]`),
	}), nil
}
