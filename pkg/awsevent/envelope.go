// Normalized read-only view of an incoming AWS notification, whether it came directly
// (EventBridge / CloudWatch Events) or wrapped in SNS
package awsevent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/logex"
)

const (
	footerMaxLen      = 300 // https://api.slack.com/docs/message-attachments#footer
	topicMaxVisible   = 40
	topicTruncateAt   = 35
	vendorPrefix      = "aws."
	snsMessagePath    = "Sns.Message"
	snsSubjectPath    = "Sns.Subject"
	snsTimestampPath  = "Sns.Timestamp"
	subscriptionField = "EventSubscriptionArn"
)

// Envelope is immutable after construction. Interpreters can share the values returned by
// Get() but must not mutate them.
type Envelope struct {
	record  interface{}
	message interface{}
}

func New(raw interface{}, logger *log.Logger) *Envelope {
	record := raw
	if records, found := lookup(raw, "Records"); found {
		if list, ok := records.([]interface{}); ok && len(list) > 0 {
			record = list[0]
		}
	}

	message := record
	if body, found := lookup(record, snsMessagePath); found && body != nil && body != "" {
		message = body
	}

	return &Envelope{
		record:  record,
		message: unwrapEmbeddedJson(message, logger),
	}
}

// SNS delivers the lower-layer event as a string
func unwrapEmbeddedJson(message interface{}, logger *log.Logger) interface{} {
	body, isString := message.(string)
	if !isString {
		return message
	}

	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return message
	}

	parsed, err := DecodeJson([]byte(trimmed))
	if err != nil {
		logex.Levels(logger).Error.Printf("message looked like JSON but failed to parse: %v", err)
		return message
	}

	return parsed
}

// numbers are kept as json.Number so account ids etc. do not turn into floats
func DecodeJson(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}

	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}

	return value, nil
}

func (e *Envelope) Record() interface{} {
	return e.record
}

func (e *Envelope) Message() interface{} {
	return e.message
}

// message as an object. false if message is a plain string, list etc.
func (e *Envelope) MessageObject() (map[string]interface{}, bool) {
	obj, ok := e.message.(map[string]interface{})
	return obj, ok
}

func (e *Envelope) Get(path string) (interface{}, bool) {
	return lookup(e.message, path)
}

func (e *Envelope) Has(path string) bool {
	_, found := e.Get(path)
	return found
}

func (e *Envelope) GetString(path string, defaultValue string) string {
	value, found := e.Get(path)
	if !found {
		return defaultValue
	}

	str, ok := asString(value)
	if !ok {
		return defaultValue
	}

	return str
}

// list of scalars at path, stringified. non-list values yield nil
func (e *Envelope) GetStrings(path string) []string {
	value, found := e.Get(path)
	if !found {
		return nil
	}

	list, ok := value.([]interface{})
	if !ok {
		return nil
	}

	strs := []string{}
	for _, item := range list {
		if str, ok := asString(item); ok {
			strs = append(strs, str)
		}
	}

	return strs
}

func (e *Envelope) RecordGet(path string) (interface{}, bool) {
	return lookup(e.record, path)
}

func (e *Envelope) RecordString(path string, defaultValue string) string {
	value, found := e.RecordGet(path)
	if !found {
		return defaultValue
	}

	str, ok := asString(value)
	if !ok {
		return defaultValue
	}

	return str
}

// only SNS has subjects
func (e *Envelope) Subject() string {
	return e.RecordString(snsSubjectPath, "")
}

func (e *Envelope) SubscriptionArn() string {
	return e.RecordString(subscriptionField, "")
}

func (e *Envelope) Time() (time.Time, bool) {
	candidates := []string{
		e.GetString("time", ""),
		e.GetString("Time", ""),
		e.GetString("Timestamp", ""),
		e.RecordString(snsTimestampPath, ""),
	}

	// first present one decides. unparseable = no time, even if a later candidate would parse
	for _, candidate := range candidates {
		if candidate != "" {
			return ParseTime(candidate)
		}
	}

	return time.Time{}, false
}

func (e *Envelope) ArnString() string {
	if arn := e.GetString("resources[0]", ""); arn != "" {
		return arn
	}

	if arn := e.GetString("arn", ""); arn != "" {
		return arn
	}

	return e.SubscriptionArn()
}

func (e *Envelope) Arn() (Arn, bool) {
	return ParseArn(e.ArnString())
}

// "aws.codebuild" => "codebuild". falls back to product of the ARN
func (e *Envelope) Source() string {
	if source := e.GetString("source", ""); source != "" {
		return strings.TrimPrefix(source, vendorPrefix)
	}

	arn, _ := e.Arn()
	return arn.Product
}

func (e *Envelope) Region(defaultValue string) string {
	if region := e.GetString("region", ""); region != "" {
		return region
	}

	if arn, ok := e.Arn(); ok && arn.Region != "" {
		return arn.Region
	}

	return defaultValue
}

func (e *Envelope) AccountId() string {
	if account := e.GetString("account", ""); account != "" {
		return account
	}

	arn, _ := e.Arn()
	return arn.Account
}

// top-level message fields minus the excluded ones. always a fresh map, so callers can do
// whatever they want with it
func (e *Envelope) Remaining(exclude ...string) map[string]interface{} {
	obj, ok := e.MessageObject()
	if !ok {
		return nil
	}

	excluded := map[string]bool{}
	for _, key := range exclude {
		excluded[key] = true
	}

	remaining := map[string]interface{}{}
	for key, value := range obj {
		if !excluded[key] {
			remaining[key] = value
		}
	}

	return remaining
}

func (e *Envelope) IsEmpty() bool {
	switch message := e.message.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(message) == ""
	case map[string]interface{}:
		return len(message) == 0
	case []interface{}:
		return len(message) == 0
	default:
		return false
	}
}

// links to the SNS topic the message arrived from. "" if not from SNS
func (e *Envelope) Footer() string {
	subscriptionArn := e.SubscriptionArn()
	if subscriptionArn == "" {
		return ""
	}

	arn, ok := ParseArn(subscriptionArn)
	if !ok {
		return ""
	}

	topic := arn.Resource

	topicUrl := fmt.Sprintf(
		"https://console.aws.amazon.com/sns/v2/home?region=%s#/topics/arn:aws:sns:%s:%s:%s",
		arn.Region,
		arn.Region,
		arn.Account,
		topic)
	signInUrl := fmt.Sprintf(
		"https://%s.signin.aws.amazon.com/console/sns?region=%s",
		arn.Account,
		arn.Region)

	topicVisible := topic
	if len([]rune(topic)) > topicMaxVisible {
		topicVisible = string([]rune(topic)[:topicTruncateAt]) + "..."
	}

	footer := fmt.Sprintf("Received via <%s|SNS %s> | <%s|Sign-In>", topicUrl, topicVisible, signInUrl)
	if len(footer) > footerMaxLen {
		footer = fmt.Sprintf("Received via <%s|SNS %s>", topicUrl, topicVisible)
	}

	return footer
}

// fills timestamp and footer if the interpreter didn't
func (e *Envelope) AttachmentWithDefaults(attachment slackmsg.Attachment, now time.Time) *slackmsg.Message {
	if attachment.Ts == 0 {
		ts, ok := e.Time()
		if !ok {
			ts = now
		}
		attachment.Ts = slackmsg.EpochSeconds(ts)
	}

	if attachment.Footer == "" {
		attachment.Footer = e.Footer()
	}

	return slackmsg.Single(attachment)
}
