package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the slice of the account document the messaging core needs.
// Account lifecycle (signup, credentials, follows) belongs to the external
// identity collaborator and is not managed here.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	ProfileImg string             `bson:"profile_img" json:"profileImg"`
}

// Profile is the public shape attached to conversation counterparts.
type Profile struct {
	ID         string `bson:"-" json:"_id"`
	Username   string `bson:"username" json:"username"`
	ProfileImg string `bson:"profile_img" json:"profileImg"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID.Hex(), Username: u.Username, ProfileImg: u.ProfileImg}
}

func (*User) GetTableName() string { return "users" }
