// Client for a deployed aws-to-slack REST API
package awstoslackclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awstoslacktypes"
	"github.com/function61/gokit/ezhttp"
	"github.com/function61/gokit/jsonfile"
)

type Client struct {
	baseUrl string
}

func New(baseUrl string) *Client {
	return &Client{baseUrl}
}

// sends a raw notification payload (SNS event, EventBridge event, ..) for dispatch.
// when delivery failed server-side the per-record result is returned along with the error.
func (c *Client) Send(ctx context.Context, rawEvent []byte) (*awstoslacktypes.IngestResult, error) {
	if !json.Valid(rawEvent) {
		return nil, errors.New("event is not valid JSON")
	}

	resp, err := ezhttp.Post(
		ctx,
		c.baseUrl+"/events",
		ezhttp.SendJson(json.RawMessage(rawEvent)),
		ezhttp.TolerateNon2xxResponse)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := &awstoslacktypes.IngestResult{}
	decodeErr := jsonfile.Unmarshal(bytes.NewReader(body), result, false)

	if resp.StatusCode >= 400 {
		statusErr := fmt.Errorf("POST /events: HTTP %d", resp.StatusCode)
		if decodeErr != nil || result.BatchId == "" {
			return nil, fmt.Errorf("%v: %s", statusErr, strings.TrimSpace(string(body)))
		}

		return result, statusErr
	}

	if decodeErr != nil {
		return nil, decodeErr
	}

	return result, nil
}

func (c *Client) Interpreters(ctx context.Context) ([]awstoslacktypes.InterpreterInfo, error) {
	resp, err := ezhttp.Get(ctx, c.baseUrl+"/interpreters")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	infos := []awstoslacktypes.InterpreterInfo{}
	if err := jsonfile.Unmarshal(resp.Body, &infos, false); err != nil {
		return nil, err
	}

	return infos, nil
}
