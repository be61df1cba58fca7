package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/function61/aws-to-slack/pkg/dispatch"
	"github.com/function61/aws-to-slack/pkg/slackhook"
	"github.com/function61/gokit/envvar"
)

const defaultRegion = "us-east-1"

type config struct {
	slack         slackhook.Config
	defaultRegion string
	charts        bool // CloudWatch alarm charts
	mode          dispatch.Mode
	overlap       dispatch.OverlapPolicy
}

// dry runs don't post anywhere, so they don't need a hook URL
func configFromEnv(requireHookUrl bool) (*config, error) {
	hookUrl := os.Getenv("SLACK_HOOK_URL")
	if requireHookUrl {
		var err error
		hookUrl, err = envvar.Required("SLACK_HOOK_URL")
		if err != nil {
			return nil, err
		}
	}

	return parseConfig(hookUrl, os.Getenv)
}

func parseConfig(hookUrl string, getenv func(string) string) (*config, error) {
	conf := &config{
		slack: slackhook.Config{
			HookUrl:   hookUrl,
			Channel:   getenv("SLACK_CHANNEL"),
			Username:  getenv("SLACK_USERNAME"),
			IconEmoji: getenv("SLACK_ICON_EMOJI"),
		},
		defaultRegion: getenv("AWS_REGION"),
		charts:        getenv("CLOUDWATCH_CHARTS") != "false",
	}

	if conf.defaultRegion == "" {
		conf.defaultRegion = defaultRegion
	}

	var err error

	if conf.mode, err = dispatch.ParseMode(getenv("DISPATCH_MODE")); err != nil {
		return nil, err
	}

	if conf.overlap, err = dispatch.ParseOverlapPolicy(getenv("DISPATCH_OVERLAP")); err != nil {
		return nil, err
	}

	if maxAttempts := getenv("SLACK_MAX_ATTEMPTS"); maxAttempts != "" {
		conf.slack.MaxAttempts, err = strconv.Atoi(maxAttempts)
		if err != nil || conf.slack.MaxAttempts < 1 {
			return nil, fmt.Errorf("SLACK_MAX_ATTEMPTS: not a positive integer: %s", maxAttempts)
		}
	}

	return conf, nil
}
