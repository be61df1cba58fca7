package awstoslackclient

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestSend(t *testing.T) {
	var received string

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.EqualString(t, r.Method+" "+r.URL.Path, "POST /events")

		body, _ := ioutil.ReadAll(r.Body)
		received = string(body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batch_id": "b1", "records": [{"index": 0, "outcome": "rendered", "interpreter": "generic", "sent": true}]}`))
	}))
	defer api.Close()

	result, err := New(api.URL).Send(context.Background(), []byte(`{"AlarmName":"cpu-high"}`))
	assert.Ok(t, err)

	assert.EqualString(t, received, `{"AlarmName":"cpu-high"}`)
	assert.EqualString(t, result.BatchId, "b1")
	assert.Assert(t, result.Sent() == 1)
	assert.EqualString(t, result.Records[0].Interpreter, "generic")
}

func TestSendDeliveryFailureKeepsResult(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"batch_id": "b2", "records": [{"index": 0, "outcome": "rendered", "interpreter": "rds", "sent": false, "error": "slack: giving up after 4 attempts"}]}`))
	}))
	defer api.Close()

	result, err := New(api.URL).Send(context.Background(), []byte(`{}`))
	assert.EqualString(t, err.Error(), "POST /events: HTTP 502")

	assert.EqualString(t, result.BatchId, "b2")
	assert.Assert(t, result.Sent() == 0)
	assert.EqualString(t, result.Records[0].Error, "slack: giving up after 4 attempts")
}

func TestSendErrorWithoutResult(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "empty payload", http.StatusBadRequest)
	}))
	defer api.Close()

	result, err := New(api.URL).Send(context.Background(), []byte(`""`))
	assert.EqualString(t, err.Error(), "POST /events: HTTP 400: empty payload")
	assert.Assert(t, result == nil)
}

func TestSendRejectsInvalidJson(t *testing.T) {
	_, err := New("http://localhost:1").Send(context.Background(), []byte(`{"truncated":`))
	assert.EqualString(t, err.Error(), "event is not valid JSON")
}

func TestInterpreters(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.EqualString(t, r.Method+" "+r.URL.Path, "GET /interpreters")

		_, _ = w.Write([]byte(`[{"name": "rds", "description": "RDS"}, {"name": "generic", "description": "rest", "catches_all": true}]`))
	}))
	defer api.Close()

	infos, err := New(api.URL).Interpreters(context.Background())
	assert.Ok(t, err)

	assert.Assert(t, len(infos) == 2)
	assert.Assert(t, !infos[0].CatchesAll)
	assert.Assert(t, infos[1].CatchesAll)
}
