package repository

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/config/db"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *Mongo) InsertHospital(ctx context.Context, hospital *models.Hospital) error {
	if hospital.ID.IsZero() {
		hospital.ID = primitive.NewObjectID()
	}
	_, err := db.CreateOne(ctx, m.collection(util.HospitalCollection), hospital)
	return err
}

func (m *Mongo) FindHospitalByID(ctx context.Context, id string) (*models.Hospital, error) {
	return findByID[models.Hospital](ctx, m.collection(util.HospitalCollection), id)
}

func (m *Mongo) FindHospitalBySlug(ctx context.Context, slug string) (*models.Hospital, error) {
	var out models.Hospital
	if err := db.FindOne(ctx, m.collection(util.HospitalCollection), bson.M{"slug": slug}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *Mongo) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	n, err := db.Count(ctx, m.collection(util.HospitalCollection), excluding(bson.M{"slug": slug}, excludeID))
	return n > 0, err
}

func (m *Mongo) ReplaceHospital(ctx context.Context, hospital *models.Hospital) error {
	return replaceVersioned(ctx, m.collection(util.HospitalCollection), hospital.ID, &hospital.Version, hospital)
}

func (m *Mongo) ListHospitals(ctx context.Context, page, limit int64) ([]models.Hospital, int64, error) {
	order := bson.D{{Key: "name", Value: 1}}
	return findPage[models.Hospital](ctx, m.collection(util.HospitalCollection), bson.M{}, order, page, limit)
}
