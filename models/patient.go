package models

type EmergencyContact struct {
	Name     string `json:"name" bson:"name"`
	Phone    string `json:"phone" bson:"phone"`
	Relation string `json:"relation" bson:"relation"`
}
