package interpreters

import (
	"context"
	"fmt"
	"strconv"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

// findings arrive either bare (SNS) or under "detail" (EventBridge)
type guardDuty struct{}

func (g *guardDuty) Name() string {
	return "guardduty"
}

func (g *guardDuty) Matches(env *awsevent.Envelope) bool {
	_, found := guardDutyFindingPrefix(env)
	return found
}

func (g *guardDuty) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	prefix, _ := guardDutyFindingPrefix(env)
	get := func(path string) string {
		return env.GetString(prefix+path, "")
	}

	title := get("title")
	description := get("description")
	severity := get("severity")

	fields := []slackmsg.Field{
		long("Description", description),
		short("Severity", severity),
	}
	if threatName := get("service.additionalInfo.threatName"); threatName != "" {
		fields = append(fields, short(threatName, get("service.additionalInfo.threatListName")))
	}

	switch actionType := get("service.action.actionType"); actionType {
	case "PORT_PROBE":
		probe := "service.action.portProbeAction.portProbeDetails[0]."

		fields = append(
			fields,
			short("Port probe details", fmt.Sprintf(
				"port %s - %s",
				get(probe+"localPortDetails.port"),
				get(probe+"localPortDetails.portName"))),
			short("Remote probe origin", fmt.Sprintf(
				"%s\n%s - %s",
				get(probe+"remoteIpDetails.ipAddressV4"),
				get(probe+"remoteIpDetails.organization.isp"),
				get(probe+"remoteIpDetails.organization.org"))),
			short("Blocked", get("service.action.portProbeAction.blocked")))
	default:
		rc.Logl.Debug.Printf("guardduty: unknown actionType '%s'", actionType)

		fields = append(fields, long("Action", prettyJson(env, prefix+"service.action")))
	}

	resourceType := get("resource.resourceType")
	fields = append(fields, short("Resource Type", resourceType))

	if resourceType == "Instance" {
		fields = append(
			fields,
			short("Instance ID", get("resource.instanceDetails.instanceId")),
			short("Instance Type", get("resource.instanceDetails.instanceType")))

		for i := 0; env.Has(fmt.Sprintf("%sresource.instanceDetails.tags[%d]", prefix, i)); i++ {
			tag := fmt.Sprintf("resource.instanceDetails.tags[%d].", i)

			fields = append(fields, short(get(tag+"key"), get(tag+"value")))
		}
	} else {
		fields = append(fields, long("Resource", prettyJson(env, prefix+"resource")))
	}

	ts := epochAt(env, prefix+"updatedAt")
	if ts == 0 {
		ts = epochAt(env, "time")
	}

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "Amazon GuardDuty",
		Fallback:   fmt.Sprintf("%s %s", title, description),
		Color:      guardDutySeverityColor(severity, rc.Palette),
		Title:      title,
		Fields:     nonEmpty(fields...),
		MrkdwnIn:   []string{"title", "text"},
		Ts:         ts,
	}), nil
}

func guardDutyFindingPrefix(env *awsevent.Envelope) (string, bool) {
	for _, prefix := range []string{"detail.", ""} {
		if env.GetString(prefix+"service.serviceName", "") == "guardduty" {
			return prefix, true
		}
	}

	return "", false
}

// https://docs.aws.amazon.com/guardduty/latest/ug/guardduty_findings.html#guardduty_findings-severity
func guardDutySeverityColor(severity string, palette slackmsg.Palette) string {
	level, err := strconv.ParseFloat(severity, 64)
	if err != nil {
		return palette.Neutral
	}

	switch {
	case level >= 7:
		return palette.Critical
	case level >= 4:
		return palette.Warning
	default:
		return palette.Neutral
	}
}

func prettyJson(env *awsevent.Envelope, path string) string {
	value, found := env.Get(path)
	if !found {
		return ""
	}

	return indentedJson(value)
}
