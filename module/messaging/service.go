package messaging

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/TOPBARD/Connect-Hub/logger"
	chatmodel "github.com/TOPBARD/Connect-Hub/module/messaging/model"
	usermodel "github.com/TOPBARD/Connect-Hub/module/user/model"
	"github.com/TOPBARD/Connect-Hub/service/gateway"
	"github.com/TOPBARD/Connect-Hub/service/media"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// ConversationStore is the persistence contract the engine runs on.
type ConversationStore interface {
	FindByParticipants(ctx context.Context, userA, userB string) (*chatmodel.Conversation, error)
	UpsertByParticipants(ctx context.Context, userA, userB string, seed chatmodel.LastMessage, mock bool) (*chatmodel.Conversation, bool, error)
	AppendMessage(ctx context.Context, conv *chatmodel.Conversation, sender, text, img, imgFileID string) (*chatmodel.Message, error)
	ListMessages(ctx context.Context, conversationID primitive.ObjectID) ([]chatmodel.Message, error)
	MarkConversationSeen(ctx context.Context, conversationID primitive.ObjectID) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]chatmodel.Conversation, error)
}

// ProfileStore resolves public profile fields for counterpart decoration.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*usermodel.Profile, error)
	GetProfiles(ctx context.Context, userIDs []string) (map[string]usermodel.Profile, error)
}

// Deliverer pushes live events to a user's connection, reporting false when
// the user is offline. Implemented by the gateway server.
type Deliverer interface {
	EmitToUser(userID, event string, payload any) bool
}

// Service is the messaging protocol engine: conversation resolution, message
// send, delivery-or-skip and seen-receipt propagation.
type Service struct {
	store    ConversationStore
	profiles ProfileStore
	deliver  Deliverer
	uploader media.Uploader
}

func NewService(store ConversationStore, profiles ProfileStore, deliver Deliverer, uploader media.Uploader) *Service {
	return &Service{store: store, profiles: profiles, deliver: deliver, uploader: uploader}
}

// MessagesData is the GET /api/messages/:participantId response shape.
type MessagesData struct {
	Participant usermodel.Profile   `json:"participant"`
	Messages    []chatmodel.Message `json:"messages"`
}

// SendMessage validates, resolves the conversation, persists and pushes.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID, text, img string) (*chatmodel.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && img == "" {
		return nil, errs.ErrArgs.WrapMsg("message must carry text or an image")
	}
	// The limit counts characters, not bytes; multibyte text must not be
	// cut short.
	if utf8.RuneCountInString(text) > chatmodel.MaxTextLen {
		return nil, errs.ErrArgs.WrapMsg("text exceeds max length")
	}
	if senderID == recipientID {
		return nil, errs.ErrArgs.WrapMsg("cannot message yourself")
	}
	if recipientID == "" {
		return nil, errs.ErrArgs.WrapMsg("recipient required")
	}

	conv, created, err := s.store.UpsertByParticipants(ctx, senderID, recipientID,
		chatmodel.LastMessage{Text: text, Sender: senderID}, false)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Infof("[messaging] conversation created pair=%s", chatmodel.PairKey(senderID, recipientID))
	}

	// Best-effort upload: a failed upload is logged and the message goes out
	// without the image.
	imgURL, imgFileID := "", ""
	if img != "" {
		if res, uerr := s.uploader.Upload(ctx, img, "uploaded_image.jpg"); uerr != nil {
			logger.Warnf("[messaging] image upload failed sender=%s err=%v", senderID, uerr)
		} else {
			imgURL, imgFileID = res.URL, res.FileID
		}
	}

	msg, err := s.store.AppendMessage(ctx, conv, senderID, text, imgURL, imgFileID)
	if err != nil {
		return nil, err
	}

	if !s.deliver.EmitToUser(recipientID, gateway.EventNewMessage, msg) {
		logger.Debugf("[messaging] recipient offline, no live push user=%s", recipientID)
	}
	return msg, nil
}

// GetMessages returns the counterpart's profile plus the ordered history of
// the conversation between caller and participant. 404 when none exists.
func (s *Service) GetMessages(ctx context.Context, callerID, participantID string) (*MessagesData, error) {
	conv, err := s.store.FindByParticipants(ctx, callerID, participantID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, errs.ErrRecordNotFound.WrapMsg("conversation not found")
	}

	profile, err := s.profiles.GetProfile(ctx, participantID)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}
	return &MessagesData{Participant: *profile, Messages: messages}, nil
}

// GetConversations lists the caller's conversations with the counterpart's
// public profile attached; the caller is filtered out of participants.
func (s *Service) GetConversations(ctx context.Context, callerID string) ([]chatmodel.ConversationData, error) {
	conversations, err := s.store.ListForUser(ctx, callerID)
	if err != nil {
		return nil, err
	}

	counterparts := make([]string, 0, len(conversations))
	for i := range conversations {
		if other := conversations[i].Counterpart(callerID); other != "" {
			counterparts = append(counterparts, other)
		}
	}
	profiles, err := s.profiles.GetProfiles(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	out := make([]chatmodel.ConversationData, 0, len(conversations))
	for i := range conversations {
		conv := &conversations[i]
		other := conv.Counterpart(callerID)
		profile, ok := profiles[other]
		if !ok {
			// Counterpart account gone; keep the thread with a bare id.
			profile = usermodel.Profile{ID: other}
		}
		out = append(out, chatmodel.ConversationData{
			ID:           conv.ID,
			Participants: []usermodel.Profile{profile},
			LastMessage:  conv.LastMessage,
			Mock:         conv.Mock,
			CreatedAt:    conv.CreatedAt,
		})
	}
	return out, nil
}

// CreateMockConversation returns the existing conversation for the pair, or
// creates a placeholder with no messages so the SPA can open a chat with a
// new user before anything is sent.
func (s *Service) CreateMockConversation(ctx context.Context, callerID, participantID string) (*chatmodel.ConversationData, error) {
	if callerID == participantID {
		return nil, errs.ErrArgs.WrapMsg("cannot start a conversation with yourself")
	}

	// The placeholder target must exist; a dangling id would create an
	// unopenable thread.
	profile, err := s.profiles.GetProfile(ctx, participantID)
	if err != nil {
		return nil, err
	}

	conv, err := s.store.FindByParticipants(ctx, callerID, participantID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv, _, err = s.store.UpsertByParticipants(ctx, callerID, participantID, chatmodel.LastMessage{}, true)
		if err != nil {
			return nil, err
		}
	}

	return &chatmodel.ConversationData{
		ID:           conv.ID,
		Participants: []usermodel.Profile{*profile},
		LastMessage:  conv.LastMessage,
		Mock:         conv.Mock,
		CreatedAt:    conv.CreatedAt,
	}, nil
}

// MarkMessagesSeen flips every unseen message in the conversation and, when
// the original sender is online, pushes the messages-seen receipt to them.
func (s *Service) MarkMessagesSeen(ctx context.Context, conversationID, senderID string) error {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return errs.ErrArgs.WrapMsg("malformed conversation id", "id", conversationID)
	}

	flipped, err := s.store.MarkConversationSeen(ctx, oid)
	if err != nil {
		return err
	}
	logger.Debugf("[messaging] marked seen conversation=%s flipped=%d", conversationID, flipped)

	if !s.deliver.EmitToUser(senderID, gateway.EventMessagesSeen,
		gateway.MessagesSeenPayload{ConversationID: conversationID}) {
		logger.Debugf("[messaging] sender offline, no seen push user=%s", senderID)
	}
	return nil
}
