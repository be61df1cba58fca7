package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/logex"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Deliver() returns errors only for failures that should fail the whole invocation.
// destination refusing a message is not one of them.
type Deliverer interface {
	Deliver(ctx context.Context, msg slackmsg.Message) error
}

const (
	OutcomeFailed = "failed" // record processing blew up outside of interpreters
)

type RecordReport struct {
	Index       int               `json:"index"`
	Outcome     string            `json:"outcome"`
	Interpreter string            `json:"interpreter,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Overlaps    []string          `json:"overlaps,omitempty"`
	Sent        bool              `json:"sent"`
	Error       string            `json:"error,omitempty"`
	Message     *slackmsg.Message `json:"-"`
}

type Report struct {
	BatchId string         `json:"batch_id"`
	Records []RecordReport `json:"records"`
}

func (r *Report) Count(outcome string) int {
	count := 0
	for _, record := range r.Records {
		if record.Outcome == outcome {
			count++
		}
	}
	return count
}

type Dispatcher struct {
	engine        *Engine
	deliverer     Deliverer
	defaultRegion string
	now           func() time.Time
	logger        *log.Logger
	logl          *logex.Leveled
}

func NewDispatcher(engine *Engine, deliverer Deliverer, defaultRegion string, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		engine:        engine,
		deliverer:     deliverer,
		defaultRegion: defaultRegion,
		now:           time.Now,
		logger:        logger,
		logl:          logex.Levels(logger),
	}
}

func (d *Dispatcher) Process(ctx context.Context, raw []byte) (*Report, error) {
	payload, err := DecodePayload(raw, d.logger)
	if err != nil {
		return nil, err
	}

	return d.ProcessPayload(ctx, payload)
}

// blocks until every record is done. returns the first fatal delivery error, but only
// after all records had their chance.
func (d *Dispatcher) ProcessPayload(ctx context.Context, payload interface{}) (*Report, error) {
	records := SplitRecords(payload)

	report := &Report{
		BatchId: uuid.New().String(),
		Records: make([]RecordReport, len(records)),
	}

	d.logl.Debug.Printf("batch %s: %d record(s)", report.BatchId, len(records))

	var group errgroup.Group

	for idx, record := range records {
		idx := idx
		record := record

		group.Go(func() error {
			recordReport, err := d.processRecord(ctx, idx, record)
			report.Records[idx] = recordReport
			return err
		})
	}

	err := group.Wait()

	d.logl.Info.Printf(
		"batch %s: %d rendered, %d suppressed, %d nomatch, %d failed",
		report.BatchId,
		report.Count(Rendered.String()),
		report.Count(Suppressed.String()),
		report.Count(NoMatch.String()),
		report.Count(OutcomeFailed))

	if err != nil {
		return report, fmt.Errorf("batch %s: %w", report.BatchId, err)
	}

	return report, nil
}

func (d *Dispatcher) processRecord(ctx context.Context, idx int, record interface{}) (rr RecordReport, fatal error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logl.Error.Printf("record #%d: panic: %v", idx, recovered)
			failuresTotal.WithLabelValues("", "record").Inc()

			rr = RecordReport{
				Index:   idx,
				Outcome: OutcomeFailed,
				Error:   fmt.Sprintf("panic: %v", recovered),
			}
			fatal = nil
		}
	}()

	recordsTotal.Inc()

	env := awsevent.New(record, d.logger)

	outcome := d.engine.Select(ctx, env, interpreter.NewRenderContext(d.now(), d.defaultRegion, d.logl))

	rr = RecordReport{
		Index:       idx,
		Outcome:     outcome.Kind.String(),
		Interpreter: outcome.Interpreter,
		Reason:      outcome.Reason,
		Overlaps:    outcome.Overlaps,
		Message:     outcome.Message,
	}

	if outcome.Kind != Rendered {
		return rr, nil
	}

	if err := d.deliverer.Deliver(ctx, *outcome.Message); err != nil {
		d.logl.Error.Printf("record #%d: delivery of %s message failed: %v", idx, outcome.Interpreter, err)
		rr.Error = err.Error()
		return rr, fmt.Errorf("record #%d: %w", idx, err)
	}

	rr.Sent = true

	d.logl.Info.Printf("record #%d: sent %s message", idx, outcome.Interpreter)

	return rr, nil
}
