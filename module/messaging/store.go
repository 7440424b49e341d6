package messaging

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	chatmodel "github.com/TOPBARD/Connect-Hub/module/messaging/model"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// Store is the durable half of the messaging core: the conversation and
// message collections plus the denormalized lastMessage upkeep.
type Store struct {
	ConvColl *mongo.Collection // conversation
	MsgColl  *mongo.Collection // message
}

func NewStore() *Store {
	conv := chatmodel.Conversation{}
	msg := chatmodel.Message{}
	return &Store{
		ConvColl: conv.Collection(),
		MsgColl:  msg.Collection(),
	}
}

// FindByParticipants matches regardless of participant order. Returns
// (nil, nil) when no conversation exists for the pair.
func (s *Store) FindByParticipants(ctx context.Context, userA, userB string) (*chatmodel.Conversation, error) {
	var conv chatmodel.Conversation
	err := s.ConvColl.FindOne(ctx, bson.M{"pair_key": chatmodel.PairKey(userA, userB)}).Decode(&conv)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("find conversation", "err", err)
	}
	return &conv, nil
}

// UpsertByParticipants resolves-or-creates the conversation for the unordered
// pair. The unique pair_key index plus $setOnInsert make concurrent first
// sends converge on one document.
func (s *Store) UpsertByParticipants(ctx context.Context, userA, userB string, seed chatmodel.LastMessage, mock bool) (*chatmodel.Conversation, bool, error) {
	now := time.Now()
	key := chatmodel.PairKey(userA, userB)
	res, err := s.ConvColl.UpdateOne(ctx,
		bson.M{"pair_key": key},
		bson.M{"$setOnInsert": bson.M{
			"participants": chatmodel.SortedPair(userA, userB),
			"pair_key":     key,
			"last_message": seed,
			"mock":         mock,
			"created_at":   now,
			"updated_at":   now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, errs.ErrStorage.WrapMsg("upsert conversation", "err", err)
	}
	// A duplicate-key error means a concurrent first send won the insert
	// between our filter and the upsert; the lookup below finds its document.
	created := err == nil && res.UpsertedCount > 0

	conv, ferr := s.FindByParticipants(ctx, userA, userB)
	if ferr != nil {
		return nil, false, ferr
	}
	if conv == nil {
		return nil, false, errs.ErrStorage.WrapMsg("conversation missing after upsert", "pair", key)
	}
	return conv, created, nil
}

// AppendMessage inserts the message and mirrors it onto the parent
// conversation's lastMessage cache. The two writes are one code path: a
// failed mirror fails the whole append rather than leaving a silent skew.
func (s *Store) AppendMessage(ctx context.Context, conv *chatmodel.Conversation, sender, text, img, imgFileID string) (*chatmodel.Message, error) {
	msg := &chatmodel.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: conv.ID,
		Sender:         sender,
		Text:           text,
		Img:            img,
		ImgFileID:      imgFileID,
		IsImg:          img != "",
		Seen:           false,
		CreatedAt:      time.Now(),
	}
	if _, err := s.MsgColl.InsertOne(ctx, msg); err != nil {
		return nil, errs.ErrStorage.WrapMsg("insert message", "err", err)
	}

	_, err := s.ConvColl.UpdateOne(ctx,
		bson.M{"_id": conv.ID},
		bson.M{"$set": bson.M{
			"last_message": chatmodel.LastMessage{
				Text:   text,
				Sender: sender,
				IsImg:  msg.IsImg,
				Seen:   false,
			},
			"mock":       false, // first real message promotes a placeholder
			"updated_at": msg.CreatedAt,
		}},
	)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("update lastMessage", "err", err)
	}
	return msg, nil
}

// ListMessages returns the conversation's messages in chronological order.
func (s *Store) ListMessages(ctx context.Context, conversationID primitive.ObjectID) ([]chatmodel.Message, error) {
	cur, err := s.MsgColl.Find(ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("find messages", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	messages := []chatmodel.Message{}
	for cur.Next(ctx) {
		var m chatmodel.Message
		if err := cur.Decode(&m); err != nil {
			return nil, errs.ErrStorage.WrapMsg("decode message", "err", err)
		}
		messages = append(messages, m)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.ErrStorage.WrapMsg("iterate messages", "err", err)
	}
	return messages, nil
}

// MarkConversationSeen flips seen on every unseen message and mirrors
// seen=true onto lastMessage. Seen is monotonic: the filter only ever selects
// seen=false documents.
func (s *Store) MarkConversationSeen(ctx context.Context, conversationID primitive.ObjectID) (int64, error) {
	res, err := s.MsgColl.UpdateMany(ctx,
		bson.M{"conversation_id": conversationID, "seen": false},
		bson.M{"$set": bson.M{"seen": true}},
	)
	if err != nil {
		return 0, errs.ErrStorage.WrapMsg("mark messages seen", "err", err)
	}

	_, err = s.ConvColl.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"last_message.seen": true}},
	)
	if err != nil {
		return res.ModifiedCount, errs.ErrStorage.WrapMsg("mirror lastMessage.seen", "err", err)
	}
	return res.ModifiedCount, nil
}

// ListForUser returns every conversation the user participates in, newest
// activity first.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]chatmodel.Conversation, error) {
	cur, err := s.ConvColl.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("find conversations", "err", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	conversations := []chatmodel.Conversation{}
	for cur.Next(ctx) {
		var c chatmodel.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, errs.ErrStorage.WrapMsg("decode conversation", "err", err)
		}
		conversations = append(conversations, c)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.ErrStorage.WrapMsg("iterate conversations", "err", err)
	}
	return conversations, nil
}
