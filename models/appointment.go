package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// ActiveStatuses hold a slot; Completed and Cancelled release it.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusScheduled, StatusConfirmed}

func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusScheduled || s == StatusConfirmed
}

func (s AppointmentStatus) IsValid() bool {
	return s.IsActive() || s == StatusCompleted || s == StatusCancelled
}

type ConsultationType string

const (
	InPerson ConsultationType = "In-Person"
	Video    ConsultationType = "Video"
	Phone    ConsultationType = "Phone"
)

func (c ConsultationType) IsValid() bool {
	return c == InPerson || c == Video || c == Phone
}

const DefaultDuration = 30

type Appointment struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Doctor             string             `json:"doctor" bson:"doctor"`
	Patient            string             `json:"patient" bson:"patient"`
	Hospital           string             `json:"hospital,omitempty" bson:"hospital,omitempty"`
	Date               time.Time          `json:"date" bson:"date"`
	Time               string             `json:"time" bson:"time"`
	Duration           int                `json:"duration" bson:"duration"`
	ConsultationType   ConsultationType   `json:"consultationType" bson:"consultationType"`
	Status             AppointmentStatus  `json:"status" bson:"status"`
	Active             bool               `json:"-" bson:"active"`
	CancellationReason string             `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`
	Reason             string             `json:"reason" bson:"reason"`
	Notes              string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	CreatedBy          string             `json:"createdBy" bson:"createdBy"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy          string             `json:"updatedBy" bson:"updatedBy"`
}

// SetStatus keeps Active in step with Status.
func (a *Appointment) SetStatus(status AppointmentStatus) {
	a.Status = status
	a.Active = status.IsActive()
}

// IsParticipant reports whether userID is the appointment's patient or doctor.
func (a *Appointment) IsParticipant(userID string) bool {
	return userID != "" && (a.Patient == userID || a.Doctor == userID)
}

// EndsAt is the moment the consultation is over.
func (a *Appointment) EndsAt() time.Time {
	start, err := time.Parse("15:04", a.Time)
	if err != nil {
		return a.Date
	}
	duration := a.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	return a.Date.Add(time.Duration(start.Hour())*time.Hour +
		time.Duration(start.Minute()+duration)*time.Minute)
}

// AppointmentInput is the body of a booking request.
type AppointmentInput struct {
	DoctorID         string             `json:"doctorId"`
	PatientID        string             `json:"patientId"`
	HospitalID       string             `json:"hospitalId"`
	Date             string             `json:"date"`
	Time             string             `json:"time"`
	Reason           string             `json:"reason"`
	Notes            string             `json:"notes"`
	Duration         *int               `json:"duration"`
	ConsultationType *ConsultationType  `json:"consultationType"`
	Status           *AppointmentStatus `json:"status"`
}

var appointmentPatchFields = []string{"date", "time", "duration", "reason", "notes", "consultationType", "hospital"}

// AppointmentPatch lists the only fields a caller may change on an appointment.
type AppointmentPatch struct {
	Date             *string           `json:"date"`
	Time             *string           `json:"time"`
	Duration         *int              `json:"duration"`
	Reason           *string           `json:"reason"`
	Notes            *string           `json:"notes"`
	ConsultationType *ConsultationType `json:"consultationType"`
	Hospital         *string           `json:"hospital"`
}

func (p *AppointmentPatch) UnmarshalJSON(data []byte) error {
	if err := rejectUnknown(data, appointmentPatchFields); err != nil {
		return err
	}
	type plain AppointmentPatch
	return json.Unmarshal(data, (*plain)(p))
}

// Reschedules reports whether the patch moves the appointment to another slot.
func (p AppointmentPatch) Reschedules() bool {
	return p.Date != nil || p.Time != nil
}

type CancelInput struct {
	Reason string `json:"reason"`
}

type AppointmentFilter struct {
	DoctorID         string
	PatientID        string
	Status           AppointmentStatus
	ConsultationType ConsultationType
	StartDate        *time.Time
	EndDate          *time.Time
	Page             int64
	Limit            int64
}

// StatusChange describes a conditional status transition.
type StatusChange struct {
	From               []AppointmentStatus
	To                 AppointmentStatus
	CancellationReason string
	UpdatedBy          string
	UpdatedAt          time.Time
}
