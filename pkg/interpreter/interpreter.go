// Contract between the dispatch engine and the format-specific interpreters
package interpreter

import (
	"context"
	"time"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
	"github.com/function61/gokit/logex"
)

// Interpreters must be stateless: one instance serves concurrent records and invocations.
type Interpreter interface {
	Name() string
	// cheap predicate. missing fields mean "no match", never an error
	Matches(env *awsevent.Envelope) bool
	// errors are for unexpected failures only. expected non-matches are Decline()
	Render(ctx context.Context, env *awsevent.Envelope, rc RenderContext) (Result, error)
}

// implemented by the fallback that matches every envelope. there can be only one and it
// must be registered last.
type CatchAll interface {
	Interpreter
	CatchesAll()
}

// per-invocation settings, passed explicitly instead of living in globals
type RenderContext struct {
	Palette       slackmsg.Palette
	Now           time.Time
	DefaultRegion string
	Logl          *logex.Leveled
}

func NewRenderContext(now time.Time, defaultRegion string, logl *logex.Leveled) RenderContext {
	if logl == nil {
		logl = logex.Levels(nil)
	}

	return RenderContext{
		Palette:       slackmsg.DefaultPalette(),
		Now:           now,
		DefaultRegion: defaultRegion,
		Logl:          logl,
	}
}

type Kind int

const (
	KindDecline Kind = iota
	KindSuppress
	KindRendered
)

func (k Kind) String() string {
	switch k {
	case KindDecline:
		return "decline"
	case KindSuppress:
		return "suppress"
	case KindRendered:
		return "rendered"
	default:
		return "unknown"
	}
}

type Result struct {
	kind    Kind
	message *slackmsg.Message
	reason  string
}

// an empty message counts as suppression
func Rendered(msg *slackmsg.Message) Result {
	if msg.IsEmpty() {
		return Suppress("rendered message was empty")
	}

	return Result{kind: KindRendered, message: msg}
}

// matched, but intentionally nothing to send. stops the scan.
func Suppress(reason string) Result {
	return Result{kind: KindSuppress, reason: reason}
}

// after closer inspection the envelope wasn't ours after all. scan continues.
func Decline(reason string) Result {
	return Result{kind: KindDecline, reason: reason}
}

func (r Result) Kind() Kind {
	return r.kind
}

func (r Result) Message() *slackmsg.Message {
	return r.message
}

func (r Result) Reason() string {
	return r.reason
}

type funcs struct {
	name    string
	matches func(env *awsevent.Envelope) bool
	render  func(ctx context.Context, env *awsevent.Envelope, rc RenderContext) (Result, error)
}

// for interpreters that don't need a type of their own
func Funcs(
	name string,
	matches func(env *awsevent.Envelope) bool,
	render func(ctx context.Context, env *awsevent.Envelope, rc RenderContext) (Result, error),
) Interpreter {
	return &funcs{name, matches, render}
}

func (f *funcs) Name() string {
	return f.name
}

func (f *funcs) Matches(env *awsevent.Envelope) bool {
	return f.matches(env)
}

func (f *funcs) Render(ctx context.Context, env *awsevent.Envelope, rc RenderContext) (Result, error) {
	return f.render(ctx, env, rc)
}

func IsCatchAll(i Interpreter) bool {
	_, is := i.(CatchAll)
	return is
}
