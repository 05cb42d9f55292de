package repository

import (
	"context"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/config/db"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (m *Mongo) InsertHealthRecord(ctx context.Context, record *models.HealthRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	_, err := db.CreateOne(ctx, m.collection(util.HealthRecordCollection), record)
	return err
}

func (m *Mongo) FindHealthRecordByID(ctx context.Context, id string) (*models.HealthRecord, error) {
	return findByID[models.HealthRecord](ctx, m.collection(util.HealthRecordCollection), id)
}

func (m *Mongo) ReplaceHealthRecord(ctx context.Context, record *models.HealthRecord) error {
	return replaceVersioned(ctx, m.collection(util.HealthRecordCollection), record.ID, &record.Version, record)
}

func softDeleteUpdate(at time.Time, by string) bson.M {
	return bson.M{
		"$set": bson.M{"status": models.RecordDeleted, "updatedAt": at, "updatedBy": by},
		"$inc": bson.M{"version": 1},
	}
}

// SoftDeleteHealthRecord flips a live record to Deleted and leaves its clinical fields alone.
func (m *Mongo) SoftDeleteHealthRecord(ctx context.Context, id string, at time.Time, by string) (*models.HealthRecord, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}
	filter["status"] = bson.M{"$ne": models.RecordDeleted}
	var out models.HealthRecord
	if err := db.FindOneAndUpdate(ctx, m.collection(util.HealthRecordCollection), filter, softDeleteUpdate(at, by), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func healthRecordFilter(f models.HealthRecordFilter) bson.M {
	filter := bson.M{}
	if f.PatientID != "" {
		filter["patient"] = f.PatientID
	}
	if f.DoctorID != "" {
		filter["doctor"] = f.DoctorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

// ListHealthRecords returns the newest visits first.
func (m *Mongo) ListHealthRecords(ctx context.Context, f models.HealthRecordFilter) ([]models.HealthRecord, int64, error) {
	order := bson.D{{Key: "visitDate", Value: -1}, {Key: "_id", Value: -1}}
	return findPage[models.HealthRecord](ctx, m.collection(util.HealthRecordCollection), healthRecordFilter(f), order, f.Page, f.Limit)
}
