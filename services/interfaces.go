package services

import (
	"context"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
)

// Stores return util.ErrNoDocument for missing documents and wrap util.ErrDuplicateKey
// when a unique index rejects a write.

// Replace* writes are optimistic: they succeed only while the stored Version still equals the
// one on the argument, bump it on success and return util.ErrNoDocument otherwise.

type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	ReplaceUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
}

type AppointmentStore interface {
	InsertAppointment(ctx context.Context, appointment *models.Appointment) error
	FindAppointmentByID(ctx context.Context, id string) (*models.Appointment, error)
	// FindActiveAppointments returns the Pending/Scheduled/Confirmed appointments of doctor on day.
	FindActiveAppointments(ctx context.Context, doctorID string, day time.Time) ([]models.Appointment, error)
	// CountActiveInSlot counts active appointments on the slot, ignoring excludeID when set.
	CountActiveInSlot(ctx context.Context, doctorID string, day time.Time, clock, excludeID string) (int64, error)
	ReplaceAppointment(ctx context.Context, appointment *models.Appointment) error
	// TransitionAppointment applies change only while the stored status is one of change.From.
	TransitionAppointment(ctx context.Context, id string, change models.StatusChange) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int64, error)
	// FindDueForCompletion returns appointments in statuses dated on or before day.
	FindDueForCompletion(ctx context.Context, statuses []models.AppointmentStatus, day time.Time) ([]models.Appointment, error)
}

type HealthRecordStore interface {
	InsertHealthRecord(ctx context.Context, record *models.HealthRecord) error
	FindHealthRecordByID(ctx context.Context, id string) (*models.HealthRecord, error)
	ReplaceHealthRecord(ctx context.Context, record *models.HealthRecord) error
	// SoftDeleteHealthRecord sets status Deleted on a record that is not deleted yet and returns it.
	SoftDeleteHealthRecord(ctx context.Context, id string, at time.Time, by string) (*models.HealthRecord, error)
	ListHealthRecords(ctx context.Context, filter models.HealthRecordFilter) ([]models.HealthRecord, int64, error)
}

type HospitalStore interface {
	InsertHospital(ctx context.Context, hospital *models.Hospital) error
	FindHospitalByID(ctx context.Context, id string) (*models.Hospital, error)
	FindHospitalBySlug(ctx context.Context, slug string) (*models.Hospital, error)
	// SlugTaken reports whether another hospital than excludeID already uses slug.
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	ReplaceHospital(ctx context.Context, hospital *models.Hospital) error
	ListHospitals(ctx context.Context, page, limit int64) ([]models.Hospital, int64, error)
}

type StatsStore interface {
	CountUsersByRole(ctx context.Context) (map[string]int64, error)
	CountAppointmentsByStatus(ctx context.Context) (map[string]int64, error)
	CountHealthRecordsByStatus(ctx context.Context) (map[string]int64, error)
	CountHospitals(ctx context.Context) (int64, error)
}

// Cache is the read-through cache in front of the stores. A nil Cache disables caching.
// Writers delete keys; readers fill them under a lease that any delete revokes.
type Cache interface {
	GetCache(ctx context.Context, key string, dest any) (bool, error)
	// LeaseCache reserves key for one fill. An empty token means another fill holds it.
	LeaseCache(ctx context.Context, key string) (string, error)
	// FillCache stores value only while token still holds the lease on key.
	FillCache(ctx context.Context, key, token string, value any) (bool, error)
	// DeleteCache drops keys together with any lease on them.
	DeleteCache(ctx context.Context, keys ...string) error
}

// SlotLocker serialises check-and-insert on a single doctor/date/time slot.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Recorder receives scheduler events for metrics. A nil Recorder is allowed.
type Recorder interface {
	ObserveBooking(outcome string)
	ObserveTransition(status string)
	ObserveAutoCompleted(n int)
}
