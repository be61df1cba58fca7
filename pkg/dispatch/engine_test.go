package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/awsevent/awseventtest"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/assert"
)

var (
	t0 = time.Date(2020, 2, 20, 14, 2, 0, 0, time.UTC)
)

func TestNewValidation(t *testing.T) {
	_, err := New(nil, nil)
	assert.EqualString(t, err.Error(), "no interpreters")

	_, err = New([]interpreter.Interpreter{
		titled("rds", true, "a"),
		titled("rds", true, "b"),
	}, nil)
	assert.EqualString(t, err.Error(), "duplicate interpreter: rds")

	_, err = New([]interpreter.Interpreter{
		catchAll{titled("generic", true, "raw")},
		titled("rds", true, "b"),
	}, nil)
	assert.EqualString(t, err.Error(), "catch-all interpreter generic must be last")

	_, err = New([]interpreter.Interpreter{
		titled("", true, "a"),
	}, nil)
	assert.EqualString(t, err.Error(), "interpreter #0 has no name")
}

func TestFirstMatchWins(t *testing.T) {
	a := titled("a", true, "from a")
	b := titled("b", true, "from b")

	assert.EqualString(t, selectTitle(t, mustEngine(t, a, b)), "a: from a")
	assert.EqualString(t, selectTitle(t, mustEngine(t, b, a)), "b: from b")
}

func TestNonMatchingAreSkipped(t *testing.T) {
	engine := mustEngine(
		t,
		titled("a", false, "from a"),
		titled("b", true, "from b"),
		fallback())

	assert.EqualString(t, selectTitle(t, engine), "b: from b")
}

func TestFallbackTotality(t *testing.T) {
	engine := mustEngine(t, titled("a", false, "from a"), fallback())

	for _, input := range []string{
		`{"foo": "bar"}`,
		`"plain string"`,
		`[1, 2, 3]`,
		`{"Records": [{"Sns": {"Message": "not json"}}]}`,
	} {
		outcome := engine.Select(context.Background(), awseventtest.Envelope(input), rc())
		assert.EqualString(t, outcome.Kind.String(), "rendered")
		assert.EqualString(t, outcome.Interpreter, "generic")
	}
}

func TestSuppressionDoesNotFallThrough(t *testing.T) {
	engine := mustEngine(
		t,
		stub("cloudformation", true, interpreter.Suppress("resource event"), nil),
		titled("b", true, "from b"),
		fallback())

	outcome := engine.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	assert.EqualString(t, outcome.Kind.String(), "suppressed")
	assert.EqualString(t, outcome.Interpreter, "cloudformation")
	assert.EqualString(t, outcome.Reason, "resource event")
	assert.Assert(t, outcome.Message == nil)
}

func TestEmptyRenderedMessageIsSuppression(t *testing.T) {
	engine := mustEngine(
		t,
		stub("a", true, interpreter.Rendered(&slackmsg.Message{}), nil),
		fallback())

	outcome := engine.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	assert.EqualString(t, outcome.Kind.String(), "suppressed")
	assert.EqualString(t, outcome.Interpreter, "a")
}

func TestDeclineContinuesScan(t *testing.T) {
	engine := mustEngine(
		t,
		stub("beanstalk", true, interpreter.Decline("missing Application"), nil),
		titled("b", true, "from b"))

	assert.EqualString(t, selectTitle(t, engine), "b: from b")
}

func TestFailuresAreTreatedAsNoMatch(t *testing.T) {
	panicsInMatches := interpreter.Funcs(
		"panics-in-matches",
		func(*awsevent.Envelope) bool { panic("boom") },
		renderTitle("never"))

	panicsInRender := interpreter.Funcs(
		"panics-in-render",
		func(*awsevent.Envelope) bool { return true },
		func(context.Context, *awsevent.Envelope, interpreter.RenderContext) (interpreter.Result, error) {
			panic("render exploded")
		})

	failing := stub("errors", true, interpreter.Result{}, errors.New("CloudWatch unreachable"))

	engine := mustEngine(t, panicsInMatches, panicsInRender, failing, fallback())

	assert.EqualString(t, selectTitle(t, engine), "generic: Raw Event")
}

func TestNoMatchWithoutFallback(t *testing.T) {
	engine := mustEngine(
		t,
		titled("a", false, "from a"),
		stub("b", true, interpreter.Result{}, errors.New("fails")))

	outcome := engine.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	assert.EqualString(t, outcome.Kind.String(), "nomatch")
	assert.EqualString(t, outcome.Interpreter, "")
}

func TestEmptyEnvelopeIsSuppressed(t *testing.T) {
	engine := mustEngine(t, fallback())

	for _, input := range []string{`{}`, `""`, `null`} {
		outcome := engine.Select(context.Background(), awseventtest.Envelope(input), rc())
		assert.EqualString(t, outcome.Kind.String(), "suppressed")
		assert.EqualString(t, outcome.Reason, "empty message")
	}
}

func TestOverlapIsReported(t *testing.T) {
	interpreters := []interpreter.Interpreter{
		titled("codecommit-pullrequest", true, "PR"),
		titled("unrelated", false, "x"),
		titled("codecommit-repository", true, "repo"),
		fallback(),
	}

	warn, err := New(interpreters, nil)
	assert.Ok(t, err)

	outcome := warn.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	assert.EqualString(t, outcome.Interpreter, "codecommit-pullrequest")
	assert.EqualString(t, strings.Join(outcome.Overlaps, ","), "codecommit-repository")

	ignore, err := New(interpreters, nil, WithOverlapPolicy(OverlapIgnore))
	assert.Ok(t, err)

	outcome = ignore.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	assert.EqualString(t, outcome.Interpreter, "codecommit-pullrequest")
	assert.Assert(t, len(outcome.Overlaps) == 0)
}

func TestCatchAllWinnerHasNoOverlaps(t *testing.T) {
	engine := mustEngine(t, titled("a", false, "x"), fallback())

	outcome := engine.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	assert.Assert(t, len(outcome.Overlaps) == 0)
}

func TestFirstNonEmptyMode(t *testing.T) {
	interpreters := []interpreter.Interpreter{
		stub("suppressor", true, interpreter.Suppress("not interesting"), nil),
		titled("b", true, "from b"),
		fallback(),
	}

	firstMatch, err := New(interpreters, nil)
	assert.Ok(t, err)
	assert.EqualString(t, selectTitle(t, firstMatch), "suppressor: <suppressed>")

	firstNonEmpty, err := New(interpreters, nil, WithMode(FirstNonEmpty))
	assert.Ok(t, err)
	assert.EqualString(t, selectTitle(t, firstNonEmpty), "b: from b")
}

func TestFirstNonEmptyModeSuppressionBeatsFallback(t *testing.T) {
	engine, err := New([]interpreter.Interpreter{
		stub("suppressor", true, interpreter.Suppress("not interesting"), nil),
		titled("b", false, "from b"),
		fallback(),
	}, nil, WithMode(FirstNonEmpty))
	assert.Ok(t, err)

	assert.EqualString(t, selectTitle(t, engine), "suppressor: <suppressed>")
}

func TestParseModeAndPolicy(t *testing.T) {
	mode, err := ParseMode("first-non-empty")
	assert.Ok(t, err)
	assert.Assert(t, mode == FirstNonEmpty)

	_, err = ParseMode("random")
	assert.EqualString(t, err.Error(), "unknown dispatch mode: random")

	policy, err := ParseOverlapPolicy("")
	assert.Ok(t, err)
	assert.Assert(t, policy == OverlapWarn)

	_, err = ParseOverlapPolicy("merge")
	assert.EqualString(t, err.Error(), "unknown overlap policy: merge")
}

func TestNames(t *testing.T) {
	engine := mustEngine(t, titled("a", false, "x"), titled("b", false, "x"), fallback())

	assert.EqualString(t, strings.Join(engine.Names(), ","), "a,b,generic")
}

// helpers

type catchAll struct {
	interpreter.Interpreter
}

func (c catchAll) CatchesAll() {}

func fallback() interpreter.Interpreter {
	return catchAll{titled("generic", true, "Raw Event")}
}

func stub(name string, matches bool, result interpreter.Result, err error) interpreter.Interpreter {
	return interpreter.Funcs(
		name,
		func(*awsevent.Envelope) bool { return matches },
		func(context.Context, *awsevent.Envelope, interpreter.RenderContext) (interpreter.Result, error) {
			return result, err
		})
}

func titled(name string, matches bool, title string) interpreter.Interpreter {
	return interpreter.Funcs(
		name,
		func(*awsevent.Envelope) bool { return matches },
		renderTitle(title))
}

func renderTitle(title string) func(context.Context, *awsevent.Envelope, interpreter.RenderContext) (interpreter.Result, error) {
	return func(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
		return interpreter.Rendered(env.AttachmentWithDefaults(slackmsg.Attachment{
			Title: title,
			Color: rc.Palette.Neutral,
		}, rc.Now)), nil
	}
}

func mustEngine(t *testing.T, interpreters ...interpreter.Interpreter) *Engine {
	t.Helper()

	engine, err := New(interpreters, nil)
	assert.Ok(t, err)

	return engine
}

func rc() interpreter.RenderContext {
	return interpreter.NewRenderContext(t0, "us-east-1", nil)
}

// "<interpreter>: <title>"
func selectTitle(t *testing.T, engine *Engine) string {
	t.Helper()

	outcome := engine.Select(context.Background(), awseventtest.Envelope(`{"foo": "bar"}`), rc())
	switch outcome.Kind {
	case Rendered:
		return outcome.Interpreter + ": " + outcome.Message.Attachments[0].Title
	case Suppressed:
		return outcome.Interpreter + ": <suppressed>"
	default:
		return "<nomatch>"
	}
}
