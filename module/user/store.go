package user

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	usermodel "github.com/TOPBARD/Connect-Hub/module/user/model"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
)

// Store resolves public profile fields for conversation decoration.
type Store struct {
	Coll *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	u := usermodel.User{}
	return &Store{Coll: db.Collection(u.GetTableName())}
}

// GetProfile returns the public profile for one user id.
func (s *Store) GetProfile(ctx context.Context, userID string) (*usermodel.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("malformed user id", "id", userID)
	}
	var u usermodel.User
	if err := s.Coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.ErrRecordNotFound.WrapMsg("user not found", "id", userID)
		}
		return nil, errs.WrapMsg(err, "find user", "id", userID)
	}
	p := u.Profile()
	return &p, nil
}

// GetProfiles resolves many ids at once; unknown ids are simply absent from
// the result map.
func (s *Store) GetProfiles(ctx context.Context, userIDs []string) (map[string]usermodel.Profile, error) {
	oids := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	out := make(map[string]usermodel.Profile, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	cur, err := s.Coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, errs.WrapMsg(err, "find users")
	}
	defer func() { _ = cur.Close(ctx) }()

	for cur.Next(ctx) {
		var u usermodel.User
		if err := cur.Decode(&u); err != nil {
			return nil, errs.WrapMsg(err, "decode user")
		}
		out[u.ID.Hex()] = u.Profile()
	}
	return out, errs.Wrap(cur.Err())
}
