package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Hospital struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Slug      string             `json:"slug" bson:"slug"`
	Address   string             `json:"address,omitempty" bson:"address,omitempty"`
	City      string             `json:"city,omitempty" bson:"city,omitempty"`
	State     string             `json:"state,omitempty" bson:"state,omitempty"`
	Country   string             `json:"country,omitempty" bson:"country,omitempty"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
	UpdatedBy string             `json:"updatedBy" bson:"updatedBy"`
	Version   int64              `json:"-" bson:"version"`
}

type HospitalInput struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

var hospitalPatchFields = []string{"name", "address", "city", "state", "country", "phone"}

type HospitalPatch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	Phone   *string `json:"phone"`
}

func (p *HospitalPatch) UnmarshalJSON(data []byte) error {
	if err := rejectUnknown(data, hospitalPatchFields); err != nil {
		return err
	}
	type plain HospitalPatch
	return json.Unmarshal(data, (*plain)(p))
}
