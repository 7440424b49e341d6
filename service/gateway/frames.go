package gateway

import (
	"encoding/json"

	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// Live-channel event names. The SPA speaks these verbatim.
const (
	EventOnlineUsers       = "online-users"         // server -> all
	EventNewMessage        = "new-message"          // server -> recipient
	EventMessagesSeen      = "messages-seen"        // server -> original sender
	EventMarkMessageAsSeen = "mark-message-as-seen" // client -> server
)

// Frame is the JSON envelope for every event in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrameJSON(raw []byte) (*Frame, error) {
	frame := &Frame{}
	if err := json.Unmarshal(raw, frame); err != nil {
		return nil, errs.WrapMsg(err, "unmarshal frame failed")
	}
	if frame.Event == "" {
		return nil, errs.New("frame missing event")
	}
	return frame, nil
}

// BuildFrame encodes an outbound event envelope.
func BuildFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.WrapMsg(err, "marshal frame payload", "event", event)
	}
	return json.Marshal(&Frame{Event: event, Data: data})
}

// MarkSeenPayload is the client intent emitted when the viewer opens a
// conversation whose last message was authored by the counterpart. UserID is
// the counterpart (the original sender awaiting the receipt).
type MarkSeenPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// MessagesSeenPayload notifies the original sender which conversation got read.
type MessagesSeenPayload struct {
	ConversationID string `json:"conversationId"`
}
