package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/function61/aws-to-slack/pkg/awstoslacktypes"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/assert"
)

const cloudFormationNotification = `{
  "Records": [
    {
      "EventSource": "aws:sns",
      "Sns": {
        "Subject": "AWS CloudFormation Notification",
        "Message": "StackId='arn:aws:cloudformation:eu-west-1:123456789012:stack/website/abc'\nTimestamp='2020-02-20T14:02:00.000Z'\nLogicalResourceId='Bucket'\nResourceStatus='CREATE_COMPLETE'\nStackName='website'\n"
      }
    },
    {
      "EventSource": "aws:sns",
      "Sns": {
        "Subject": "hello",
        "Message": "world"
      }
    }
  ]
}`

func TestPostEvents(t *testing.T) {
	slack := &recordingDeliverer{}

	api := newTestRestApi(t, slack)

	resp := httptest.NewRecorder()
	api.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(cloudFormationNotification)))

	assert.Assert(t, resp.Code == http.StatusOK)

	result := awstoslacktypes.IngestResult{}
	assert.Ok(t, json.Unmarshal(resp.Body.Bytes(), &result))

	assert.Assert(t, result.BatchId != "")
	assert.Assert(t, len(result.Records) == 2)
	assert.EqualString(t, result.Records[0].Outcome, "suppressed")
	assert.EqualString(t, result.Records[0].Interpreter, "cloudformation")
	assert.EqualString(t, result.Records[1].Outcome, "rendered")
	assert.EqualString(t, result.Records[1].Interpreter, "generic")
	assert.Assert(t, result.Sent() == 1)
	assert.Assert(t, len(slack.sent()) == 1)
}

func TestPostEventsSlackDown(t *testing.T) {
	api := newTestRestApi(t, &recordingDeliverer{err: errors.New("giving up after 4 attempts")})

	resp := httptest.NewRecorder()
	api.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"hello": "world"}`)))

	assert.Assert(t, resp.Code == http.StatusBadGateway)

	result := awstoslacktypes.IngestResult{}
	assert.Ok(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.EqualString(t, result.Records[0].Error, "giving up after 4 attempts")
	assert.Assert(t, result.Sent() == 0)
}

func TestPostEmptyEvent(t *testing.T) {
	api := newTestRestApi(t, &recordingDeliverer{})

	resp := httptest.NewRecorder()
	api.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("  ")))

	assert.Assert(t, resp.Code == http.StatusBadRequest)
	assert.EqualString(t, resp.Body.String(), "empty payload\n")
}

func TestGetInterpreters(t *testing.T) {
	api := newTestRestApi(t, &recordingDeliverer{})

	resp := httptest.NewRecorder()
	api.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/interpreters", nil))

	assert.Assert(t, resp.Code == http.StatusOK)

	infos := []awstoslacktypes.InterpreterInfo{}
	assert.Ok(t, json.Unmarshal(resp.Body.Bytes(), &infos))

	assert.EqualString(t, infos[0].Name, "cloudwatch-alarm")
	assert.Assert(t, !infos[0].CatchesAll)

	last := infos[len(infos)-1]
	assert.EqualString(t, last.Name, "generic")
	assert.Assert(t, last.CatchesAll)
}

func TestGetMetrics(t *testing.T) {
	api := newTestRestApi(t, &recordingDeliverer{})

	resp := httptest.NewRecorder()
	api.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Assert(t, resp.Code == http.StatusOK)
	assert.Assert(t, strings.Contains(resp.Body.String(), "awstoslack_dispatch_"))
}

func newTestRestApi(t *testing.T, deliverer *recordingDeliverer) http.Handler {
	t.Helper()

	conf, err := parseConfig("", envFrom(map[string]string{"CLOUDWATCH_CHARTS": "false"}))
	assert.Ok(t, err)

	svc, err := newService(conf, deliverer, nil)
	assert.Ok(t, err)

	return newRestApi(svc, nil)
}

type recordingDeliverer struct {
	mu       sync.Mutex
	messages []slackmsg.Message
	err      error
}

func (r *recordingDeliverer) Deliver(_ context.Context, msg slackmsg.Message) error {
	if r.err != nil {
		return r.err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingDeliverer) sent() []slackmsg.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]slackmsg.Message{}, r.messages...)
}
