package repository

import (
	"context"
	"regexp"

	"github.com/Aman-ydav/CareSync-sub000/config/db"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *Mongo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return findByID[models.User](ctx, m.collection(util.UserCollection), id)
}

func (m *Mongo) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := db.CreateOne(ctx, m.collection(util.UserCollection), user)
	return err
}

func (m *Mongo) ReplaceUser(ctx context.Context, user *models.User) error {
	return replaceVersioned(ctx, m.collection(util.UserCollection), user.ID, &user.Version, user)
}

func userFilter(f models.UserFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Specialty != "" {
		filter["specialty"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Specialty) + "$", Options: "i"}
	}
	if f.VerifiedOnly {
		filter["isVerified"] = true
	}
	return filter
}

func (m *Mongo) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int64, error) {
	order := bson.D{{Key: "name", Value: 1}}
	return findPage[models.User](ctx, m.collection(util.UserCollection), userFilter(f), order, f.Page, f.Limit)
}
