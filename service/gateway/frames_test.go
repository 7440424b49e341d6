package gateway

import (
	"encoding/json"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	raw, err := BuildFrame(EventMessagesSeen, MessagesSeenPayload{ConversationID: "abc123"})
	if err != nil {
		t.Fatalf("BuildFrame: %v", err)
	}

	frame, err := ParseFrameJSON(raw)
	if err != nil {
		t.Fatalf("ParseFrameJSON: %v", err)
	}
	if frame.Event != EventMessagesSeen {
		t.Fatalf("event = %q", frame.Event)
	}

	var payload MessagesSeenPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ConversationID != "abc123" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestParseFrameRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "hello"},
		{"missing event", `{"data":{"x":1}}`},
		{"empty event", `{"event":""}`},
	}
	for _, tc := range cases {
		if _, err := ParseFrameJSON([]byte(tc.raw)); err == nil {
			t.Errorf("%s: want error, got nil", tc.name)
		}
	}
}

func TestParseFrameClientIntent(t *testing.T) {
	raw := []byte(`{"event":"mark-message-as-seen","data":{"conversationId":"c1","userId":"u2"}}`)
	frame, err := ParseFrameJSON(raw)
	if err != nil {
		t.Fatalf("ParseFrameJSON: %v", err)
	}
	if frame.Event != EventMarkMessageAsSeen {
		t.Fatalf("event = %q", frame.Event)
	}

	var payload MarkSeenPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ConversationID != "c1" || payload.UserID != "u2" {
		t.Fatalf("payload = %+v", payload)
	}
}
