// Helpers for building test payloads
package awseventtest

import (
	"encoding/json"

	"github.com/function61/aws-to-slack/pkg/awsevent"
)

const (
	SubscriptionArn = "arn:aws:sns:region:9999999991:ExampleTopic:ExampleSubscriptionId"
	SnsTimestamp    = "2020-02-20T14:02:00.000Z"
)

// wraps message in a single-record SNS event like Lambda would deliver it. non-string
// messages are JSON-serialized first, because that's what SNS does.
func SnsEvent(message interface{}, subject string) map[string]interface{} {
	return map[string]interface{}{
		"Records": []interface{}{
			SnsRecord(message, subject),
		},
	}
}

func SnsRecord(message interface{}, subject string) map[string]interface{} {
	body, isString := message.(string)
	if !isString {
		asJson, err := json.Marshal(message)
		if err != nil {
			panic(err)
		}
		body = string(asJson)
	}

	if subject == "" {
		subject = "TestInvoke"
	}

	return map[string]interface{}{
		"EventSource":          "aws:sns",
		"EventVersion":         "1.0",
		"EventSubscriptionArn": SubscriptionArn,
		"Sns": map[string]interface{}{
			"Type":      "Notification",
			"TopicArn":  "arn:aws:sns:region:9999999991:ExampleTopic",
			"Timestamp": SnsTimestamp,
			"Subject":   subject,
			"MessageId": "95df01b4-ee98-5cb9-9903-4c221d41eb5e",
			"Message":   body,
		},
	}
}

// panics on invalid JSON, test inputs are supposed to be valid
func Decode(input string) interface{} {
	value, err := awsevent.DecodeJson([]byte(input))
	if err != nil {
		panic(err)
	}

	return value
}

func Envelope(input string) *awsevent.Envelope {
	return awsevent.New(Decode(input), nil)
}
