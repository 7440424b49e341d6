package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/TOPBARD/Connect-Hub/service/mgo"
)

// MaxTextLen caps the text of a single message.
const MaxTextLen = 200

// Message is one chat message. Created on send, mutated only to flip Seen
// (false -> true, never back), ordered by CreatedAt ascending.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversationId"`
	Sender         string             `bson:"sender" json:"sender"`
	Text           string             `bson:"text" json:"text"`
	Img            string             `bson:"img" json:"img"`
	ImgFileID      string             `bson:"img_file_id,omitempty" json:"-"` // deletable handle from the media service
	IsImg          bool               `bson:"is_img" json:"isImg"`
	Seen           bool               `bson:"seen" json:"seen"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}

func (*Message) GetTableName() string { return "message" }

func (m *Message) Collection() *mongo.Collection {
	return mgo.GetDB().Collection(m.GetTableName())
}
