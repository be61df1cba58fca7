// Types of the REST API
package awstoslacktypes

// POST /events response
type IngestResult struct {
	BatchId string         `json:"batch_id"`
	Records []RecordResult `json:"records"`
}

func (i *IngestResult) Sent() int {
	sent := 0
	for _, record := range i.Records {
		if record.Sent {
			sent++
		}
	}
	return sent
}

type RecordResult struct {
	Index       int      `json:"index"`
	Outcome     string   `json:"outcome"` // rendered | suppressed | nomatch | failed
	Interpreter string   `json:"interpreter,omitempty"`
	Reason      string   `json:"reason,omitempty"` // why suppressed
	Overlaps    []string `json:"overlaps,omitempty"`
	Sent        bool     `json:"sent"`
	Error       string   `json:"error,omitempty"`
}

// GET /interpreters response items, in match order
type InterpreterInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CatchesAll  bool   `json:"catches_all"`
}
