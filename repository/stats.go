package repository

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/config/db"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"go.mongodb.org/mongo-driver/bson"
)

func (m *Mongo) CountUsersByRole(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, m.collection(util.UserCollection), "role")
}

func (m *Mongo) CountAppointmentsByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, m.collection(util.AppointmentCollection), "status")
}

func (m *Mongo) CountHealthRecordsByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, m.collection(util.HealthRecordCollection), "status")
}

func (m *Mongo) CountHospitals(ctx context.Context) (int64, error) {
	return db.Count(ctx, m.collection(util.HospitalCollection), bson.M{})
}
