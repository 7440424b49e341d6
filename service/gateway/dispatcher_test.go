package gateway

import (
	"context"
	"encoding/json"
	"testing"
)

type recordingHandler struct {
	event string
	got   json.RawMessage
	calls int
}

func (h *recordingHandler) Event() string { return h.event }

func (h *recordingHandler) Handle(_ context.Context, _ *Client, data json.RawMessage) error {
	h.calls++
	h.got = data
	return nil
}

func TestDispatcherRoutesByEvent(t *testing.T) {
	d := NewDispatcher()
	h := &recordingHandler{event: EventMarkMessageAsSeen}
	d.Register(h)

	raw, _ := BuildFrame(EventMarkMessageAsSeen, MarkSeenPayload{ConversationID: "c1", UserID: "u2"})
	frame, err := ParseFrameJSON(raw)
	if err != nil {
		t.Fatalf("ParseFrameJSON: %v", err)
	}
	if err := d.Dispatch(context.Background(), nil, frame); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if h.calls != 1 {
		t.Fatalf("handler calls = %d", h.calls)
	}

	var payload MarkSeenPayload
	if err := json.Unmarshal(h.got, &payload); err != nil {
		t.Fatalf("handler payload: %v", err)
	}
	if payload.ConversationID != "c1" {
		t.Fatalf("payload = %+v", payload)
	}
}

type panicHandler struct{}

func (panicHandler) Event() string { return "explode" }

func (panicHandler) Handle(context.Context, *Client, json.RawMessage) error {
	panic("handler bug")
}

func TestPanickingHandlerDoesNotEndSession(t *testing.T) {
	s := NewServer(0)
	s.Disp().Register(panicHandler{})
	s.dispatchFrame(nil, &Frame{Event: "explode"})
	// Reaching here means the panic was contained by the dispatch wrapper.
}

func TestDispatcherUnknownEvent(t *testing.T) {
	d := NewDispatcher()
	if err := d.Dispatch(context.Background(), nil, &Frame{Event: "nonsense"}); err == nil {
		t.Fatal("unknown event must error")
	}
}
