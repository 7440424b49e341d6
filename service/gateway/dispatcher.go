package gateway

import (
	"context"
	"encoding/json"

	"github.com/TOPBARD/Connect-Hub/logger"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// Handler consumes one client-initiated event type. Handler errors are logged
// and swallowed: socket events carry no response contract.
type Handler interface {
	Event() string
	Handle(ctx context.Context, from *Client, data json.RawMessage) error
}

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Event()] = h }

func (d *Dispatcher) Dispatch(ctx context.Context, from *Client, f *Frame) error {
	h, ok := d.handlers[f.Event]
	if !ok {
		logger.Debugf("no handler for event=%s", f.Event)
		return errs.New("no handler for event " + f.Event)
	}
	return h.Handle(ctx, from, f.Data)
}
