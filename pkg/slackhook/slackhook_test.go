package slackhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/assert"
)

func TestDeliverSuccess(t *testing.T) {
	hook := newFakeHook(http.StatusOK)
	defer hook.Close()

	client, sleeps := newTestClient(t, Config{HookUrl: hook.URL + "/services/T0/B0/secret"})

	assert.Ok(t, client.Deliver(context.Background(), *slackmsg.Single(slackmsg.Attachment{Title: "hello"})))

	assert.Assert(t, len(hook.received()) == 1)
	assert.EqualString(t, hook.received()[0], `{"attachments":[{"title":"hello"}]}`)
	assert.Assert(t, len(*sleeps) == 0)
}

func TestDefaultsFilledFromConfig(t *testing.T) {
	hook := newFakeHook(http.StatusOK)
	defer hook.Close()

	client, _ := newTestClient(t, Config{
		HookUrl:   hook.URL,
		Channel:   "#ops",
		Username:  "AWS",
		IconEmoji: ":cloud:",
	})

	assert.Ok(t, client.Deliver(context.Background(), slackmsg.Message{Text: "hi"}))
	assert.Ok(t, client.Deliver(context.Background(), slackmsg.Message{Text: "hi", Channel: "#dev"}))

	assert.EqualString(t, hook.received()[0], `{"channel":"#ops","username":"AWS","icon_emoji":":cloud:","text":"hi"}`)
	assert.EqualString(t, hook.received()[1], `{"channel":"#dev","username":"AWS","icon_emoji":":cloud:","text":"hi"}`)
}

func TestClientErrorIsSwallowed(t *testing.T) {
	hook := newFakeHook(http.StatusBadRequest)
	defer hook.Close()

	client, sleeps := newTestClient(t, Config{HookUrl: hook.URL})

	assert.Ok(t, client.Deliver(context.Background(), slackmsg.Message{Text: "hi"}))

	assert.Assert(t, len(hook.received()) == 1)
	assert.Assert(t, len(*sleeps) == 0)
}

func TestServerErrorIsRetriedThenFatal(t *testing.T) {
	hook := newFakeHook(http.StatusInternalServerError)
	defer hook.Close()

	client, sleeps := newTestClient(t, Config{HookUrl: hook.URL})

	err := client.Deliver(context.Background(), slackmsg.Message{Text: "hi"})
	assert.Assert(t, err != nil)
	assert.Assert(t, strings.Contains(err.Error(), "giving up after 4 attempts: HTTP 500: oops"))

	assert.Assert(t, len(hook.received()) == 4)
	assert.EqualString(t, durations(*sleeps), "500ms 1s 2s")
}

func TestServerErrorThenSuccess(t *testing.T) {
	hook := newFakeHook(http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK)
	defer hook.Close()

	client, sleeps := newTestClient(t, Config{HookUrl: hook.URL, MaxAttempts: 5})

	assert.Ok(t, client.Deliver(context.Background(), slackmsg.Message{Text: "hi"}))

	assert.Assert(t, len(hook.received()) == 3)
	assert.EqualString(t, durations(*sleeps), "500ms 1s")
}

func TestTransportErrorDoesNotLeakHookUrl(t *testing.T) {
	hook := newFakeHook(http.StatusOK)
	hookUrl := hook.URL + "/services/T0/B0/secret"
	hook.Close() // connection refused from now on

	client, _ := newTestClient(t, Config{HookUrl: hookUrl, MaxAttempts: 2})

	err := client.Deliver(context.Background(), slackmsg.Message{Text: "hi"})
	assert.Assert(t, err != nil)
	assert.Assert(t, !strings.Contains(err.Error(), "secret"))
	assert.Assert(t, strings.Contains(err.Error(), "/services/REDACTED"))
}

func TestCancelledWhileWaitingToRetry(t *testing.T) {
	hook := newFakeHook(http.StatusInternalServerError)
	defer hook.Close()

	client, err := New(Config{HookUrl: hook.URL}, nil)
	assert.Ok(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}

	err = client.Deliver(ctx, slackmsg.Message{Text: "hi"})
	assert.Assert(t, err != nil)
	assert.Assert(t, strings.Contains(err.Error(), "context canceled"))
	assert.Assert(t, len(hook.received()) == 1)
}

func TestInvalidHookUrl(t *testing.T) {
	tcs := []struct {
		input  string
		output string
	}{
		{"ftp://hooks.slack.com/services/x", "hook URL scheme must be http or https; got 'ftp'"},
		{"https:///services/x", "hook URL must have a host"},
		{"", "hook URL scheme must be http or https; got ''"},
	}

	for _, tc := range tcs {
		tc := tc // pin
		t.Run(tc.input, func(t *testing.T) {
			_, err := New(Config{HookUrl: tc.input}, nil)
			assert.EqualString(t, err.Error(), tc.output)
		})
	}
}

func TestRedactUrl(t *testing.T) {
	tcs := []struct {
		input  string
		output string
	}{
		{"https://hooks.slack.com/services/T000/B000/XXXX", "https://hooks.slack.com/services/REDACTED"},
		{"https://example.com/hook?token=abc", "https://example.com/REDACTED?REDACTED"},
		{"http://localhost:8080", "http://localhost:8080"},
		{"not a url", "REDACTED"},
	}

	for _, tc := range tcs {
		tc := tc // pin
		t.Run(tc.input, func(t *testing.T) {
			assert.EqualString(t, RedactUrl(tc.input), tc.output)
		})
	}
}

func TestBackoff(t *testing.T) {
	assert.EqualString(t, durations([]time.Duration{
		backoff(1),
		backoff(2),
		backoff(3),
		backoff(4),
		backoff(5),
		backoff(6),
	}), "500ms 1s 2s 4s 8s 8s")
}

func TestPrinter(t *testing.T) {
	out := &bytes.Buffer{}

	assert.Ok(t, NewPrinter(out).Deliver(context.Background(), slackmsg.Message{Text: "hi"}))

	assert.EqualString(t, out.String(), "{\n  \"text\": \"hi\"\n}\n")
}

func newTestClient(t *testing.T, conf Config) (*Client, *[]time.Duration) {
	t.Helper()

	client, err := New(conf, nil)
	assert.Ok(t, err)

	sleeps := []time.Duration{}
	client.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	return client, &sleeps
}

// responds with given statuses in order, repeating the last one
type fakeHook struct {
	*httptest.Server
	mu       sync.Mutex
	statuses []int
	bodies   []string
}

func newFakeHook(statuses ...int) *fakeHook {
	hook := &fakeHook{statuses: statuses}

	hook.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)

		hook.mu.Lock()
		status := hook.statuses[0]
		if len(hook.statuses) > 1 {
			hook.statuses = hook.statuses[1:]
		}
		hook.bodies = append(hook.bodies, compact(body))
		hook.mu.Unlock()

		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte("oops\n"))
		}
	}))

	return hook
}

func (f *fakeHook) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.bodies...)
}

func compact(body []byte) string {
	buf := &bytes.Buffer{}
	if err := json.Compact(buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}

func durations(ds []time.Duration) string {
	strs := []string{}
	for _, d := range ds {
		strs = append(strs, d.String())
	}
	return strings.Join(strs, " ")
}
