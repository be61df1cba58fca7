package lambdautils

// This design is not pretty.. https://stackoverflow.com/a/52572943

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// a notification we did not unmarshal into any aws-lambda-go type, because interpreters
// work on the raw JSON shape
type Notification struct {
	Trigger string // "sns" | "eventbridge" | "unknown". for logging only
	Raw     []byte
}

type multiEventTypeHandlerFn func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error)

type multiEventTypeHandler struct {
	fn multiEventTypeHandlerFn
}

func NewMultiEventTypeHandler(fn multiEventTypeHandlerFn) lambda.Handler {
	return &multiEventTypeHandler{fn}
}

func (m *multiEventTypeHandler) Invoke(ctx context.Context, reqRaw []byte) ([]byte, error) {
	probe := &eventTypeProbe{}
	polymorphicEvent, err := probe.IdentifyAndUnmarshal(reqRaw)
	if err != nil {
		return nil, err
	}

	return m.fn(ctx, polymorphicEvent)
}

// we introduce just enough fields to determine what type of trigger this is, so we can
// deserialize JSON with proper type
type eventTypeProbe struct {
	HttpMethod string `json:"httpMethod"`  // APIGatewayProxyRequest
	DetailType string `json:"detail-type"` // EventBridge (formerly CloudWatch Events)
	Records    []struct {
		EventSource string `json:"EventSource"` // "aws:sns"
	} `json:"Records"`
}

// triggers we need to handle:
// - API Gateway events (our REST API)
// - everything else is a notification: SNS trigger, EventBridge rule target, direct invoke
func (e *eventTypeProbe) Identify(reqRaw []byte) interface{} {
	if e.HttpMethod != "" {
		return &events.APIGatewayProxyRequest{}
	}

	trigger := "unknown"
	switch {
	case len(e.Records) > 0 && e.Records[0].EventSource == "aws:sns":
		trigger = "sns"
	case e.DetailType != "":
		trigger = "eventbridge"
	}

	return &Notification{Trigger: trigger, Raw: reqRaw}
}

func (e *eventTypeProbe) IdentifyAndUnmarshal(reqRaw []byte) (interface{}, error) {
	// a payload that is not a JSON object (a bare string via direct invoke) is still a
	// notification. dispatcher decides what to make of it.
	if err := json.Unmarshal(reqRaw, e); err != nil {
		return &Notification{Trigger: "unknown", Raw: reqRaw}, nil
	}

	typeOfRequest := e.Identify(reqRaw)

	if apigwRequest, is := typeOfRequest.(*events.APIGatewayProxyRequest); is {
		if err := json.Unmarshal(reqRaw, apigwRequest); err != nil {
			return nil, fmt.Errorf("request unmarshal: %v", err)
		}
	}

	return typeOfRequest, nil
}
