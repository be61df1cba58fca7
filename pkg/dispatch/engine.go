// Picks exactly one interpreter per envelope from an ordered registry, and fans batched
// payloads out to it record by record
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/logex"
)

type Mode int

const (
	// first matching interpreter decides, even if it suppresses
	FirstMatch Mode = iota
	// every matching interpreter renders, first non-empty result wins
	FirstNonEmpty
)

func ParseMode(input string) (Mode, error) {
	switch input {
	case "", "first-match":
		return FirstMatch, nil
	case "first-non-empty":
		return FirstNonEmpty, nil
	default:
		return FirstMatch, fmt.Errorf("unknown dispatch mode: %s", input)
	}
}

type OverlapPolicy int

const (
	OverlapWarn OverlapPolicy = iota
	OverlapIgnore
)

func ParseOverlapPolicy(input string) (OverlapPolicy, error) {
	switch input {
	case "", "warn":
		return OverlapWarn, nil
	case "ignore":
		return OverlapIgnore, nil
	default:
		return OverlapWarn, fmt.Errorf("unknown overlap policy: %s", input)
	}
}

type OutcomeKind int

const (
	NoMatch OutcomeKind = iota
	Suppressed
	Rendered
)

func (o OutcomeKind) String() string {
	switch o {
	case NoMatch:
		return "nomatch"
	case Suppressed:
		return "suppressed"
	case Rendered:
		return "rendered"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Kind        OutcomeKind
	Interpreter string // "" for NoMatch and for empty envelopes
	Message     *slackmsg.Message
	Reason      string
	Overlaps    []string // other specific interpreters that also matched
}

var (
	errNoInterpreters = errors.New("no interpreters")
)

type Engine struct {
	interpreters []interpreter.Interpreter
	mode         Mode
	overlap      OverlapPolicy
	logl         *logex.Leveled
}

type Option func(e *Engine)

func WithMode(mode Mode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}

func WithOverlapPolicy(policy OverlapPolicy) Option {
	return func(e *Engine) {
		e.overlap = policy
	}
}

// order of interpreters is the order of evaluation. most specific first, catch-all last.
func New(interpreters []interpreter.Interpreter, logger *log.Logger, opts ...Option) (*Engine, error) {
	if len(interpreters) == 0 {
		return nil, errNoInterpreters
	}

	seen := map[string]bool{}
	for idx, item := range interpreters {
		name := item.Name()
		if name == "" {
			return nil, fmt.Errorf("interpreter #%d has no name", idx)
		}

		if seen[name] {
			return nil, fmt.Errorf("duplicate interpreter: %s", name)
		}
		seen[name] = true

		if interpreter.IsCatchAll(item) && idx != len(interpreters)-1 {
			return nil, fmt.Errorf("catch-all interpreter %s must be last", name)
		}
	}

	e := &Engine{
		interpreters: append([]interpreter.Interpreter{}, interpreters...),
		mode:         FirstMatch,
		overlap:      OverlapWarn,
		logl:         logex.Levels(logger),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

func (e *Engine) Names() []string {
	names := []string{}
	for _, item := range e.interpreters {
		names = append(names, item.Name())
	}
	return names
}

func (e *Engine) Interpreters() []interpreter.Interpreter {
	return append([]interpreter.Interpreter{}, e.interpreters...)
}

func (e *Engine) Select(ctx context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) Outcome {
	started := time.Now()
	defer func() {
		selectDuration.Observe(time.Since(started).Seconds())
	}()

	if env.IsEmpty() {
		e.logl.Info.Println("skipping empty message")
		return Outcome{Kind: Suppressed, Reason: "empty message"}
	}

	var outcome Outcome
	var winnerIdx int
	switch e.mode {
	case FirstNonEmpty:
		outcome, winnerIdx = e.selectFirstNonEmpty(ctx, env, rc)
	default:
		outcome, winnerIdx = e.selectFirstMatch(ctx, env, rc)
	}

	if outcome.Kind != NoMatch && e.overlap == OverlapWarn {
		outcome.Overlaps = e.findOverlaps(env, winnerIdx)
		if len(outcome.Overlaps) > 0 {
			e.logl.Error.Printf(
				"interpreter overlap: %s won, but also matched: %v",
				outcome.Interpreter,
				outcome.Overlaps)

			for _, shadowed := range outcome.Overlaps {
				overlapsTotal.WithLabelValues(outcome.Interpreter, shadowed).Inc()
			}
		}
	}

	switch outcome.Kind {
	case Rendered:
		e.logl.Debug.Printf("%s rendered a message", outcome.Interpreter)
	case Suppressed:
		e.logl.Info.Printf("%s suppressed the message: %s", outcome.Interpreter, outcome.Reason)
	case NoMatch:
		e.logl.Error.Println("no interpreter matched")
	}

	outcomesTotal.WithLabelValues(outcome.Interpreter, outcome.Kind.String()).Inc()

	return outcome
}

func (e *Engine) selectFirstMatch(
	ctx context.Context,
	env *awsevent.Envelope,
	rc interpreter.RenderContext,
) (Outcome, int) {
	for idx, item := range e.interpreters {
		if !e.matches(item, env) {
			continue
		}

		result, ok := e.render(ctx, item, env, rc)
		if !ok {
			continue
		}

		switch result.Kind() {
		case interpreter.KindRendered:
			return Outcome{Kind: Rendered, Interpreter: item.Name(), Message: result.Message()}, idx
		case interpreter.KindSuppress:
			return Outcome{Kind: Suppressed, Interpreter: item.Name(), Reason: result.Reason()}, idx
		default: // declined, keep scanning
			e.logl.Debug.Printf("%s declined: %s", item.Name(), result.Reason())
		}
	}

	return Outcome{Kind: NoMatch}, -1
}

func (e *Engine) selectFirstNonEmpty(
	ctx context.Context,
	env *awsevent.Envelope,
	rc interpreter.RenderContext,
) (Outcome, int) {
	var suppressed *Outcome
	suppressedIdx := -1

	for idx, item := range e.interpreters {
		// catch-all only gets its turn when nobody else had anything to say
		if interpreter.IsCatchAll(item) && suppressed != nil {
			break
		}

		if !e.matches(item, env) {
			continue
		}

		result, ok := e.render(ctx, item, env, rc)
		if !ok {
			continue
		}

		switch result.Kind() {
		case interpreter.KindRendered:
			return Outcome{Kind: Rendered, Interpreter: item.Name(), Message: result.Message()}, idx
		case interpreter.KindSuppress:
			if suppressed == nil {
				suppressed = &Outcome{Kind: Suppressed, Interpreter: item.Name(), Reason: result.Reason()}
				suppressedIdx = idx
			}
		default:
			e.logl.Debug.Printf("%s declined: %s", item.Name(), result.Reason())
		}
	}

	if suppressed != nil {
		return *suppressed, suppressedIdx
	}

	return Outcome{Kind: NoMatch}, -1
}

// specific interpreters after the winner that would also have matched
func (e *Engine) findOverlaps(env *awsevent.Envelope, winnerIdx int) []string {
	if winnerIdx < 0 || interpreter.IsCatchAll(e.interpreters[winnerIdx]) {
		return nil
	}

	overlaps := []string{}
	for _, item := range e.interpreters[winnerIdx+1:] {
		if interpreter.IsCatchAll(item) {
			continue
		}

		if e.matches(item, env) {
			overlaps = append(overlaps, item.Name())
		}
	}

	if len(overlaps) == 0 {
		return nil
	}

	return overlaps
}

func (e *Engine) matches(item interpreter.Interpreter, env *awsevent.Envelope) (matched bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logl.Error.Printf("%s: Matches panicked: %v", item.Name(), recovered)
			failuresTotal.WithLabelValues(item.Name(), "matches").Inc()
			matched = false
		}
	}()

	return item.Matches(env)
}

// ok=false when the interpreter failed and should be treated as a non-match
func (e *Engine) render(
	ctx context.Context,
	item interpreter.Interpreter,
	env *awsevent.Envelope,
	rc interpreter.RenderContext,
) (result interpreter.Result, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logl.Error.Printf("%s: Render panicked: %v", item.Name(), recovered)
			failuresTotal.WithLabelValues(item.Name(), "render").Inc()
			result = interpreter.Decline("panic")
			ok = false
		}
	}()

	result, err := item.Render(ctx, env, rc)
	if err != nil {
		e.logl.Error.Printf("%s: Render: %v", item.Name(), err)
		failuresTotal.WithLabelValues(item.Name(), "render").Inc()
		return interpreter.Decline(err.Error()), false
	}

	return result, true
}
