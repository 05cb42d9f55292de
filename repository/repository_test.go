package repository

import (
	"testing"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/services"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ services.UserStore         = (*Mongo)(nil)
	_ services.AppointmentStore  = (*Mongo)(nil)
	_ services.HealthRecordStore = (*Mongo)(nil)
	_ services.HospitalStore     = (*Mongo)(nil)
	_ services.StatsStore        = (*Mongo)(nil)
)

func TestObjectIDRejectsMalformedIDs(t *testing.T) {
	_, err := objectID("not-an-id")
	assert.True(t, util.IsKind(err, util.KindValidation))

	oid := primitive.NewObjectID()
	filter, err := byID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": oid}, filter)
}

func TestExcluding(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, bson.M{"slug": "a", "_id": bson.M{"$ne": oid}}, excluding(bson.M{"slug": "a"}, oid.Hex()))
	assert.Equal(t, bson.M{"slug": "a"}, excluding(bson.M{"slug": "a"}, ""))
	assert.Equal(t, bson.M{"slug": "a"}, excluding(bson.M{"slug": "a"}, "junk"))
}

func TestAppointmentFilter(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, bson.M{}, appointmentFilter(models.AppointmentFilter{}))
	assert.Equal(t, bson.M{
		"doctor":           "d1",
		"patient":          "p1",
		"status":           models.StatusConfirmed,
		"consultationType": models.Video,
		"date":             bson.M{"$gte": start, "$lte": end},
	}, appointmentFilter(models.AppointmentFilter{
		DoctorID:         "d1",
		PatientID:        "p1",
		Status:           models.StatusConfirmed,
		ConsultationType: models.Video,
		StartDate:        &start,
		EndDate:          &end,
	}))
	assert.Equal(t, bson.M{"date": bson.M{"$lte": end}}, appointmentFilter(models.AppointmentFilter{EndDate: &end}))
}

func TestSlotFilters(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, bson.M{"doctor": "d1", "date": day, "active": true}, activeSlotFilter("d1", day))

	statuses := []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}
	assert.Equal(t, bson.M{
		"status": bson.M{"$in": statuses},
		"date":   bson.M{"$lte": day},
	}, dueFilter(statuses, day))
}

func TestTransitionUpdate(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	update := transitionUpdate(models.StatusChange{
		To:                 models.StatusCancelled,
		CancellationReason: "travel",
		UpdatedBy:          "p1",
		UpdatedAt:          at,
	})
	assert.Equal(t, bson.M{"$set": bson.M{
		"status":             models.StatusCancelled,
		"active":             false,
		"cancellationReason": "travel",
		"updatedAt":          at,
		"updatedBy":          "p1",
	}}, update)

	update = transitionUpdate(models.StatusChange{To: models.StatusConfirmed, UpdatedBy: "d1", UpdatedAt: at})
	set := update["$set"].(bson.M)
	assert.Equal(t, true, set["active"])
	assert.NotContains(t, set, "cancellationReason")
}

func TestUserAndRecordFilters(t *testing.T) {
	filter := userFilter(models.UserFilter{Role: role.DOCTOR, Specialty: "Ear (ENT)", VerifiedOnly: true})
	assert.Equal(t, role.DOCTOR, filter["role"])
	assert.Equal(t, true, filter["isVerified"])
	assert.Equal(t, primitive.Regex{Pattern: `^Ear \(ENT\)$`, Options: "i"}, filter["specialty"])

	assert.Equal(t, bson.M{}, userFilter(models.UserFilter{}))
	assert.Equal(t, bson.M{"doctor": "d1", "status": models.RecordActive},
		healthRecordFilter(models.HealthRecordFilter{DoctorID: "d1", Status: models.RecordActive}))
}

func TestVersionedFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, bson.M{"_id": oid, "version": int64(4)}, versioned(oid, 4))
	assert.Equal(t, bson.M{"_id": oid, "version": bson.M{"$in": bson.A{int64(0), nil}}}, versioned(oid, 0))
}

func TestSoftDeleteUpdateTouchesOnlyStatusAndAudit(t *testing.T) {
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	update := softDeleteUpdate(at, "doc-1")

	assert.Equal(t, bson.M{"status": models.RecordDeleted, "updatedAt": at, "updatedBy": "doc-1"}, update["$set"])
	assert.Equal(t, bson.M{"version": 1}, update["$inc"])
	assert.Len(t, update, 2)
}
