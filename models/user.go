package models

import (
	"encoding/json"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/role"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name"`
	Email             string             `json:"email" bson:"email"`
	Phone             string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Password          string             `json:"-" bson:"password"`
	Role              role.Role          `json:"role" bson:"role"`
	IsVerified        bool               `json:"isVerified" bson:"isVerified"`
	Specialty         string             `json:"specialty,omitempty" bson:"specialty,omitempty"`
	ConsultationHours *ConsultationHours `json:"consultationHours,omitempty" bson:"consultationHours,omitempty"`
	ExperienceYears   int                `json:"experienceYears,omitempty" bson:"experienceYears,omitempty"`
	BloodGroup        string             `json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty"`
	Allergies         []string           `json:"allergies,omitempty" bson:"allergies,omitempty"`
	EmergencyContact  *EmergencyContact  `json:"emergencyContact,omitempty" bson:"emergencyContact,omitempty"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	CreatedBy         string             `json:"createdBy" bson:"createdBy"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy         string             `json:"updatedBy" bson:"updatedBy"`
	Version           int64              `json:"-" bson:"version"`
}

func (u *User) IsVerifiedDoctor() bool {
	return u.Role == role.DOCTOR && u.IsVerified
}

type UserInput struct {
	Name              string             `json:"name" binding:"required"`
	Email             string             `json:"email" binding:"required,email"`
	Password          string             `json:"password" binding:"required,min=8"`
	Phone             string             `json:"phone"`
	Role              role.Role          `json:"role" binding:"required,oneof=ADMIN DOCTOR PATIENT"`
	IsVerified        bool               `json:"isVerified"`
	Specialty         string             `json:"specialty"`
	ConsultationHours *ConsultationHours `json:"consultationHours"`
	ExperienceYears   int                `json:"experienceYears" binding:"gte=0"`
	BloodGroup        string             `json:"bloodGroup"`
	Allergies         []string           `json:"allergies"`
	EmergencyContact  *EmergencyContact  `json:"emergencyContact"`
}

var userPatchFields = []string{"name", "phone", "specialty", "consultationHours", "experienceYears", "bloodGroup", "allergies", "emergencyContact"}

// UserPatch is the profile subset users can edit; role and verification are not in it.
type UserPatch struct {
	Name              *string            `json:"name"`
	Phone             *string            `json:"phone"`
	Specialty         *string            `json:"specialty"`
	ConsultationHours *ConsultationHours `json:"consultationHours"`
	ExperienceYears   *int               `json:"experienceYears"`
	BloodGroup        *string            `json:"bloodGroup"`
	Allergies         *[]string          `json:"allergies"`
	EmergencyContact  *EmergencyContact  `json:"emergencyContact"`
}

func (p *UserPatch) UnmarshalJSON(data []byte) error {
	if err := rejectUnknown(data, userPatchFields); err != nil {
		return err
	}
	type plain UserPatch
	return json.Unmarshal(data, (*plain)(p))
}

type UserFilter struct {
	Role         role.Role
	Specialty    string
	VerifiedOnly bool
	Page         int64
	Limit        int64
}
