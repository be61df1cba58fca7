package dispatch

import (
	"bytes"
	"errors"
	"log"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/gokit/logex"
)

var (
	ErrEmptyPayload = errors.New("empty payload")
)

// accepts a JSON object, or the same object JSON-encoded as a string. anything that isn't
// JSON at all is passed on as an opaque string message.
func DecodePayload(raw []byte, logger *log.Logger) (interface{}, error) {
	logl := logex.Levels(logger)

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrEmptyPayload
	}

	payload, err := awsevent.DecodeJson(trimmed)
	if err != nil {
		logl.Error.Printf("payload is not JSON, treating as opaque message: %v", err)
		return string(trimmed), nil
	}

	if encoded, isString := payload.(string); isString {
		inner := strings.TrimSpace(encoded)

		if strings.HasPrefix(inner, "{") || strings.HasPrefix(inner, "[") {
			decoded, err := awsevent.DecodeJson([]byte(inner))
			if err != nil {
				logl.Error.Printf("string payload looked like JSON but failed to parse: %v", err)
			} else {
				payload = decoded
			}
		}
	}

	if payload == nil { // literal null
		return nil, ErrEmptyPayload
	}

	return payload, nil
}

// SNS may batch records. each record gets its own payload which keeps any shared top-level
// fields, so interpreters see the same shape as with a single-record delivery.
func SplitRecords(payload interface{}) []interface{} {
	obj, isObject := payload.(map[string]interface{})
	if !isObject {
		return []interface{}{payload}
	}

	records, isList := obj["Records"].([]interface{})
	if !isList || len(records) <= 1 {
		return []interface{}{payload}
	}

	split := make([]interface{}, 0, len(records))
	for _, record := range records {
		perRecord := make(map[string]interface{}, len(obj))
		for key, value := range obj {
			perRecord[key] = value
		}
		perRecord["Records"] = []interface{}{record}

		split = append(split, perRecord)
	}

	return split
}
