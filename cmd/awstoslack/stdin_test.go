package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestDispatchStdinDryRun(t *testing.T) {
	conf, err := parseConfig("", envFrom(map[string]string{"CLOUDWATCH_CHARTS": "false"}))
	assert.Ok(t, err)

	output := &bytes.Buffer{}

	assert.Ok(t, dispatchStdin(
		context.Background(),
		conf,
		strings.NewReader(cloudFormationNotification),
		output,
		true,
		nil))

	// message printed by dry run, then the summary
	assert.Assert(t, strings.Contains(output.String(), `"title": "hello"`))
	assert.Assert(t, strings.Contains(output.String(), "resource event"))
	assert.Assert(t, strings.Contains(output.String(), "| generic "))
}

func TestDispatchStdinNeedsHookUrlWhenNotDryRun(t *testing.T) {
	conf, err := parseConfig("", envFrom(nil))
	assert.Ok(t, err)

	err = dispatchStdin(context.Background(), conf, strings.NewReader(`{}`), &bytes.Buffer{}, false, nil)
	assert.EqualString(t, err.Error(), "hook URL scheme must be http or https; got ''")
}
