package slackhook

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

// Deliverer for dry runs: writes each message as indented JSON instead of posting it
type Printer struct {
	out io.Writer
	mu  sync.Mutex // records are delivered concurrently
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Deliver(_ context.Context, msg slackmsg.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(msg)
}
