package interpreters

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

// https://docs.aws.amazon.com/inspector/latest/userguide/inspector_rules-arns.html
var inspectorRulesPackages = map[string][]string{
	"Common Vulnerabilities and Exposures": {
		"arn:aws:inspector:us-west-2:758058086616:rulespackage/0-9hgA516p",
		"arn:aws:inspector:us-east-1:316112463485:rulespackage/0-gEjTy7T7",
		"arn:aws:inspector:us-west-1:166987590008:rulespackage/0-TKgzoVOa",
		"arn:aws:inspector:ap-south-1:162588757376:rulespackage/0-LqnJE9dO",
		"arn:aws:inspector:ap-southeast-2:454640832652:rulespackage/0-D5TGAxiR",
		"arn:aws:inspector:ap-northeast-2:526946625049:rulespackage/0-PoGHMznc",
		"arn:aws:inspector:ap-northeast-1:406045910587:rulespackage/0-gHP9oWNT",
		"arn:aws:inspector:eu-west-1:357557129151:rulespackage/0-ubA5XvBh",
		"arn:aws:inspector:eu-central-1:537503971621:rulespackage/0-wNqHa8M9",
	},
	"CIS Operating System Security Configuration Benchmarks": {
		"arn:aws:inspector:us-west-2:758058086616:rulespackage/0-H5hpSawc",
		"arn:aws:inspector:us-east-1:316112463485:rulespackage/0-rExsr2X8",
		"arn:aws:inspector:us-west-1:166987590008:rulespackage/0-xUY8iRqX",
		"arn:aws:inspector:ap-south-1:162588757376:rulespackage/0-PSUlX14m",
		"arn:aws:inspector:ap-southeast-2:454640832652:rulespackage/0-Vkd2Vxjq",
		"arn:aws:inspector:ap-northeast-2:526946625049:rulespackage/0-T9srhg1z",
		"arn:aws:inspector:ap-northeast-1:406045910587:rulespackage/0-7WNjqgGu",
		"arn:aws:inspector:eu-west-1:357557129151:rulespackage/0-sJBhCr0F",
		"arn:aws:inspector:eu-central-1:537503971621:rulespackage/0-nZrAVuv8",
	},
	"Security Best Practices": {
		"arn:aws:inspector:us-west-2:758058086616:rulespackage/0-JJOtZiqQ",
		"arn:aws:inspector:us-east-1:316112463485:rulespackage/0-R01qwB5Q",
		"arn:aws:inspector:us-west-1:166987590008:rulespackage/0-byoQRFYm",
		"arn:aws:inspector:ap-south-1:162588757376:rulespackage/0-fs0IZZBj",
		"arn:aws:inspector:ap-southeast-2:454640832652:rulespackage/0-asL6HRgN",
		"arn:aws:inspector:ap-northeast-2:526946625049:rulespackage/0-2WRpmi4n",
		"arn:aws:inspector:ap-northeast-1:406045910587:rulespackage/0-bBUQnxMq",
		"arn:aws:inspector:eu-west-1:357557129151:rulespackage/0-SnojL3Z6",
		"arn:aws:inspector:eu-central-1:537503971621:rulespackage/0-ZujVHEPB",
	},
	"Runtime Behavior Analysis": {
		"arn:aws:inspector:us-west-2:758058086616:rulespackage/0-vg5GGHSD",
		"arn:aws:inspector:us-east-1:316112463485:rulespackage/0-gBONHN9h",
		"arn:aws:inspector:us-west-1:166987590008:rulespackage/0-yeYxlt0x",
		"arn:aws:inspector:ap-south-1:162588757376:rulespackage/0-EhMQZy6C",
		"arn:aws:inspector:ap-southeast-2:454640832652:rulespackage/0-P8Tel2Xj",
		"arn:aws:inspector:ap-northeast-2:526946625049:rulespackage/0-PoYq7lI7",
		"arn:aws:inspector:ap-northeast-1:406045910587:rulespackage/0-knGBhqEu",
		"arn:aws:inspector:eu-west-1:357557129151:rulespackage/0-lLmwe1zd",
		"arn:aws:inspector:eu-central-1:537503971621:rulespackage/0-0GMUM6fg",
	},
}

var inspectorRunStates = map[string]string{
	"COMPLETED":                      "Completed",
	"CREATED":                        "Created",
	"START_DATA_COLLECTION_PENDING":  "Starting data collection",
	"COLLECTING_DATA":                "Collecting data",
	"STOP_DATA_COLLECTION_PENDING":   "Stopping data collection",
	"DATA_COLLECTED":                 "Data collected",
	"START_EVALUATING_RULES_PENDING": "Start evaluating rules",
	"EVALUATING_RULES":               "Evaluating rules",
}

type inspector struct{}

func (i *inspector) Name() string {
	return "inspector"
}

func (i *inspector) Matches(env *awsevent.Envelope) bool {
	return strings.HasPrefix(env.GetString("template", ""), "arn:aws:inspector")
}

func (i *inspector) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	run := env.GetString("run", "")

	fields := []slackmsg.Field{long("Target", env.GetString("target", ""))}
	if run != "" {
		fields = append(fields, long("Run", slackmsg.Link(run, inspectorRunUrl("run", run))))
	}

	title := ""
	text := ""
	color := rc.Palette.Neutral

	switch event := env.GetString("event", ""); event {
	case "ASSESSMENT_RUN_STARTED":
		title = "Assessment run started"
		color = rc.Palette.Ok
	case "ASSESSMENT_RUN_COMPLETED":
		title = "Assessment run summary"
		color = rc.Palette.Ok

		lines := []string{"*" + slackmsg.Link("Findings", inspectorRunUrl("finding", run)) + "*"}
		if findingsCount := env.GetString("findingsCount", ""); findingsCount != "" {
			for _, finding := range strings.Split(strings.Trim(findingsCount, "{}"), ",") {
				lines = append(lines, inspectorFinding(finding))
			}
		}
		text = strings.Join(lines, "\n")
	case "FINDING_REPORTED":
		title = "Finding reported"
		color = rc.Palette.Warning
		text = env.GetString("finding", "")
	case "ASSESSMENT_RUN_STATE_CHANGED":
		title = "Assessment run"
		newState := env.GetString("newstate", "")
		text = newState
		if humanized, found := inspectorRunStates[newState]; found {
			text = humanized
		}
	case "ENABLE_ASSESSMENT_NOTIFICATIONS":
		return interpreter.Suppress("notification setup confirmation"), nil
	default:
		title = event
	}

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "Amazon Inspector",
		Fallback:   text,
		Color:      color,
		Title:      title,
		Text:       text,
		Fields:     fields,
		MrkdwnIn:   []string{"text"},
		Ts:         epochAt(env, "time"),
	}), nil
}

func inspectorRunUrl(kind string, runArn string) string {
	region := "invalid"
	if arn, ok := awsevent.ParseArn(runArn); ok && arn.Region != "" {
		region = arn.Region
	}

	filter, _ := json.Marshal(map[string][]string{
		"assessmentRunArns": {runArn},
	})

	return awsevent.ConsoleUrl(region, "/inspector/home#/"+kind) + "?filter=" + url.QueryEscape(string(filter))
}

// "arn:aws:inspector:...:rulespackage/0-gEjTy7T7=3" => "Common Vulnerabilities and Exposures: 3"
func inspectorFinding(finding string) string {
	arn := strings.TrimSpace(finding)
	count := "0"
	if pos := strings.Index(arn, "="); pos != -1 {
		arn, count = arn[:pos], arn[pos+1:]
	}

	for name, arns := range inspectorRulesPackages {
		for _, candidate := range arns {
			if candidate == arn {
				return name + ": " + count
			}
		}
	}

	return arn + ": " + count
}
