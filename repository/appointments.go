package repository

import (
	"context"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/config/db"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var appointmentOrder = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}

func (m *Mongo) appointments() *mongo.Collection {
	return m.collection(util.AppointmentCollection)
}

func (m *Mongo) InsertAppointment(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID.IsZero() {
		appointment.ID = primitive.NewObjectID()
	}
	appointment.Active = appointment.Status.IsActive()
	_, err := db.CreateOne(ctx, m.appointments(), appointment)
	return err
}

func (m *Mongo) FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error) {
	return findByID[models.Appointment](ctx, m.appointments(), id)
}

func activeSlotFilter(doctorID string, day time.Time) bson.M {
	return bson.M{"doctor": doctorID, "date": day, "active": true}
}

func (m *Mongo) FindActiveAppointments(ctx context.Context, doctorID string, day time.Time) ([]models.Appointment, error) {
	return findAll[models.Appointment](ctx, m.appointments(), activeSlotFilter(doctorID, day), appointmentOrder)
}

func (m *Mongo) CountActiveInSlot(ctx context.Context, doctorID string, day time.Time, clock, excludeID string) (int64, error) {
	filter := activeSlotFilter(doctorID, day)
	filter["time"] = clock
	return db.Count(ctx, m.appointments(), excluding(filter, excludeID))
}

// ReplaceAppointment writes appointment only while the stored status still equals its status.
func (m *Mongo) ReplaceAppointment(ctx context.Context, appointment *models.Appointment) error {
	appointment.Active = appointment.Status.IsActive()
	filter := bson.M{"_id": appointment.ID, "status": appointment.Status}
	return db.ReplaceOne(ctx, m.appointments(), filter, appointment)
}

func transitionUpdate(change models.StatusChange) bson.M {
	set := bson.M{
		"status":    change.To,
		"active":    change.To.IsActive(),
		"updatedAt": change.UpdatedAt,
		"updatedBy": change.UpdatedBy,
	}
	if change.CancellationReason != "" {
		set["cancellationReason"] = change.CancellationReason
	}
	return bson.M{"$set": set}
}

func (m *Mongo) TransitionAppointment(ctx context.Context, id string, change models.StatusChange) (*models.Appointment, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}
	filter["status"] = bson.M{"$in": change.From}
	var out models.Appointment
	if err := db.FindOneAndUpdate(ctx, m.appointments(), filter, transitionUpdate(change), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func appointmentFilter(f models.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.DoctorID != "" {
		filter["doctor"] = f.DoctorID
	}
	if f.PatientID != "" {
		filter["patient"] = f.PatientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ConsultationType != "" {
		filter["consultationType"] = f.ConsultationType
	}
	if f.StartDate != nil || f.EndDate != nil {
		dates := bson.M{}
		if f.StartDate != nil {
			dates["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			dates["$lte"] = *f.EndDate
		}
		filter["date"] = dates
	}
	return filter
}

func (m *Mongo) ListAppointments(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, int64, error) {
	return findPage[models.Appointment](ctx, m.appointments(), appointmentFilter(f), appointmentOrder, f.Page, f.Limit)
}

func dueFilter(statuses []models.AppointmentStatus, day time.Time) bson.M {
	return bson.M{"status": bson.M{"$in": statuses}, "date": bson.M{"$lte": day}}
}

func (m *Mongo) FindDueForCompletion(ctx context.Context, statuses []models.AppointmentStatus, day time.Time) ([]models.Appointment, error) {
	return findAll[models.Appointment](ctx, m.appointments(), dueFilter(statuses, day), appointmentOrder)
}
