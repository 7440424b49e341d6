package messaging

import (
	"context"
	"encoding/json"

	"github.com/TOPBARD/Connect-Hub/service/gateway"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// SeenHandler consumes the mark-message-as-seen live event: the viewer opened
// a conversation whose last message came from the counterpart.
type SeenHandler struct {
	svc *Service
}

func NewSeenHandler(svc *Service) *SeenHandler { return &SeenHandler{svc: svc} }

func (h *SeenHandler) Event() string { return gateway.EventMarkMessageAsSeen }

func (h *SeenHandler) Handle(ctx context.Context, from *gateway.Client, data json.RawMessage) error {
	var payload gateway.MarkSeenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errs.WrapMsg(err, "decode mark-seen payload")
	}
	if payload.ConversationID == "" || payload.UserID == "" {
		return errs.ErrArgs.WrapMsg("mark-seen payload incomplete")
	}
	return h.svc.MarkMessagesSeen(ctx, payload.ConversationID, payload.UserID)
}
