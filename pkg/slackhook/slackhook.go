// Posts messages to a Slack incoming webhook
package slackhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/ezhttp"
	"github.com/function61/gokit/logex"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxAttempts = 4

	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
	requestTimeout = 10 * time.Second
	maxBodyInLog   = 1024

	// Slack allows one message per second per webhook, with short bursts
	sendInterval = time.Second
	sendBurst    = 4
)

type Config struct {
	HookUrl     string
	Channel     string // optional overrides for what's configured for the hook in Slack
	Username    string
	IconEmoji   string
	MaxAttempts int // 0 = DefaultMaxAttempts
}

type Client struct {
	conf       Config
	httpClient *http.Client
	limiter    *rate.Limiter
	sleep      func(context.Context, time.Duration) error
	logl       *logex.Leveled
}

func New(conf Config, logger *log.Logger) (*Client, error) {
	if err := validateHookUrl(conf.HookUrl); err != nil {
		return nil, err
	}

	if conf.MaxAttempts <= 0 {
		conf.MaxAttempts = DefaultMaxAttempts
	}

	return &Client{
		conf:       conf,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Every(sendInterval), sendBurst),
		sleep:      sleepCtx,
		logl:       logex.Levels(logger),
	}, nil
}

// returns error only when Slack could not be reached (transport error or 5xx on every
// attempt). 4xx means Slack refused the message, which is logged and dropped.
func (c *Client) Deliver(ctx context.Context, msg slackmsg.Message) error {
	c.applyDefaults(&msg)

	var lastErr error

	for attempt := 1; attempt <= c.conf.MaxAttempts; attempt++ {
		if attempt > 1 {
			retriesTotal.Inc()

			if err := c.sleep(ctx, backoff(attempt-1)); err != nil {
				deliveriesTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("slack: waiting to retry: %w (last error: %v)", err, lastErr)
			}
		}

		err := c.post(ctx, &msg)
		if err == nil {
			deliveriesTotal.WithLabelValues("sent").Inc()
			c.logl.Info.Printf("delivered %d attachment(s)", len(msg.Attachments))
			return nil
		}

		var hookErr *hookError
		if errors.As(err, &hookErr) && !hookErr.retryable {
			deliveriesTotal.WithLabelValues("rejected").Inc()
			c.logl.Error.Printf("message rejected, not retrying: %v", err)
			return nil
		}

		lastErr = err

		c.logl.Error.Printf("attempt %d/%d: %v", attempt, c.conf.MaxAttempts, err)
	}

	deliveriesTotal.WithLabelValues("failed").Inc()

	return fmt.Errorf("slack: giving up after %d attempts: %w", c.conf.MaxAttempts, lastErr)
}

func (c *Client) post(ctx context.Context, msg *slackmsg.Message) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &hookError{fmt.Errorf("rate limit: %w", err), true}
	}

	started := time.Now()
	defer func() {
		deliveryDuration.Observe(time.Since(started).Seconds())
	}()

	resp, err := ezhttp.Post(
		ctx,
		c.conf.HookUrl,
		ezhttp.SendJson(msg),
		ezhttp.TolerateNon2xxResponse,
		ezhttp.Client(c.httpClient))
	if err != nil {
		// *url.Error would leak the hook URL into logs
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return &hookError{fmt.Errorf("POST %s: %w", RedactUrl(c.conf.HookUrl), err), true}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 400 {
		return nil
	}

	body, _ := ioutil.ReadAll(io.LimitReader(resp.Body, maxBodyInLog))

	return &hookError{
		err:       fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		retryable: resp.StatusCode >= 500,
	}
}

func (c *Client) applyDefaults(msg *slackmsg.Message) {
	if msg.Channel == "" {
		msg.Channel = c.conf.Channel
	}
	if msg.Username == "" {
		msg.Username = c.conf.Username
	}
	if msg.IconEmoji == "" {
		msg.IconEmoji = c.conf.IconEmoji
	}
}

type hookError struct {
	err       error
	retryable bool
}

func (h *hookError) Error() string {
	return h.err.Error()
}

func (h *hookError) Unwrap() error {
	return h.err
}

// 500ms, 1s, 2s, 4s, 8s, 8s, ..
func backoff(retry int) time.Duration {
	delay := initialBackoff
	for i := 1; i < retry; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}

	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validateHookUrl(hookUrl string) error {
	u, err := url.Parse(hookUrl)
	if err != nil {
		return fmt.Errorf("invalid hook URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("hook URL scheme must be http or https; got '%s'", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("hook URL must have a host")
	}

	return nil
}

// https://hooks.slack.com/services/T000/B000/XXXX => https://hooks.slack.com/services/REDACTED
// (the path is the secret)
func RedactUrl(hookUrl string) string {
	u, err := url.Parse(hookUrl)
	if err != nil || u.Host == "" {
		return "REDACTED"
	}

	redacted := u.Scheme + "://" + u.Host

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 1 {
		redacted += "/" + segments[0]
	}

	if u.Path != "" && u.Path != "/" {
		redacted += "/REDACTED"
	}

	if u.RawQuery != "" {
		redacted += "?REDACTED"
	}

	return redacted
}
