package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	usermodel "github.com/TOPBARD/Connect-Hub/module/user/model"
	"github.com/TOPBARD/Connect-Hub/service/mgo"
)

// LastMessage is the denormalized summary of the newest message, kept on the
// conversation so the list fetch needs no join. It is written only alongside
// the message writes that change it.
type LastMessage struct {
	Text   string `bson:"text" json:"text"`
	Sender string `bson:"sender" json:"sender"`
	IsImg  bool   `bson:"is_img" json:"isImg"`
	Seen   bool   `bson:"seen" json:"seen"`
}

// Conversation is the persistent record of a 1:1 thread. Participants are
// stored in normalized (sorted) order; PairKey carries a unique index so at
// most one document exists per unordered pair.
type Conversation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Participants []string           `bson:"participants" json:"participants"`
	PairKey      string             `bson:"pair_key" json:"-"`
	LastMessage  LastMessage        `bson:"last_message" json:"lastMessage"`
	Mock         bool               `bson:"mock,omitempty" json:"mock,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"-"`
}

func (*Conversation) GetTableName() string { return "conversation" }

func (c *Conversation) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(c.GetTableName())
}

// Counterpart resolves "the other participant" by filtering against the
// caller; nothing relies on array order.
func (c *Conversation) Counterpart(callerID string) string {
	for _, p := range c.Participants {
		if p != callerID {
			return p
		}
	}
	return ""
}

// ConversationData is the API shape for the conversation list: participants
// populated with public profiles and the caller filtered out, leaving exactly
// the counterpart.
type ConversationData struct {
	ID           primitive.ObjectID  `json:"_id"`
	Participants []usermodel.Profile `json:"participants"`
	LastMessage  LastMessage         `json:"lastMessage"`
	Mock         bool                `json:"mock,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// PairKey normalizes an unordered participant pair into the unique lookup key.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// SortedPair returns the participants in stored order.
func SortedPair(a, b string) []string {
	if a > b {
		a, b = b, a
	}
	return []string{a, b}
}

// ParsePairKey is the inverse of PairKey; used by tests and diagnostics.
func ParsePairKey(key string) (a, b string, ok bool) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
