package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RecordStatus string

const (
	RecordActive   RecordStatus = "Active"
	RecordArchived RecordStatus = "Archived"
	RecordDeleted  RecordStatus = "Deleted"
)

func (s RecordStatus) IsValid() bool {
	return s == RecordActive || s == RecordArchived || s == RecordDeleted
}

type HealthRecord struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Patient       string             `json:"patient" bson:"patient"`
	Doctor        string             `json:"doctor" bson:"doctor"`
	Hospital      string             `json:"hospital,omitempty" bson:"hospital,omitempty"`
	Diagnosis     string             `json:"diagnosis" bson:"diagnosis"`
	Prescriptions []Prescription     `json:"prescriptions" bson:"prescriptions"`
	VitalSigns    *VitalSigns        `json:"vitalSigns,omitempty" bson:"vitalSigns,omitempty"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	VisitDate     time.Time          `json:"visitDate" bson:"visitDate"`
	FollowUpDate  *time.Time         `json:"followUpDate,omitempty" bson:"followUpDate,omitempty"`
	FileURLs      []FileURL          `json:"fileUrls" bson:"fileUrls"`
	Status        RecordStatus       `json:"status" bson:"status"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	CreatedBy     string             `json:"createdBy" bson:"createdBy"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy     string             `json:"updatedBy" bson:"updatedBy"`
	Version       int64              `json:"-" bson:"version"`
}

// HealthRecordInput is the body of a create request. Dates accept YYYY-MM-DD or RFC3339.
type HealthRecordInput struct {
	PatientID     string         `json:"patientId"`
	DoctorID      string         `json:"doctorId"`
	HospitalID    string         `json:"hospitalId"`
	Diagnosis     string         `json:"diagnosis"`
	Prescriptions []Prescription `json:"prescriptions" binding:"dive"`
	VitalSigns    *VitalSigns    `json:"vitalSigns"`
	Notes         string         `json:"notes"`
	VisitDate     string         `json:"visitDate"`
	FollowUpDate  string         `json:"followUpDate"`
	FileURLs      []FileURL      `json:"fileUrls" binding:"dive"`
}

var healthRecordPatchFields = []string{"diagnosis", "prescriptions", "vitalSigns", "notes", "visitDate", "followUpDate", "fileUrls", "hospital", "status"}

type HealthRecordPatch struct {
	Diagnosis     *string         `json:"diagnosis"`
	Prescriptions *[]Prescription `json:"prescriptions"`
	VitalSigns    *VitalSigns     `json:"vitalSigns"`
	Notes         *string         `json:"notes"`
	VisitDate     *string         `json:"visitDate"`
	FollowUpDate  *string         `json:"followUpDate"`
	FileURLs      *[]FileURL      `json:"fileUrls"`
	Hospital      *string         `json:"hospital"`
	Status        *RecordStatus   `json:"status"`
}

func (p *HealthRecordPatch) UnmarshalJSON(data []byte) error {
	if err := rejectUnknown(data, healthRecordPatchFields); err != nil {
		return err
	}
	type plain HealthRecordPatch
	return json.Unmarshal(data, (*plain)(p))
}

type HealthRecordFilter struct {
	PatientID string
	DoctorID  string
	Status    RecordStatus
	Page      int64
	Limit     int64
}
