package models

type Prescription struct {
	Medicine     string `json:"medicine" bson:"medicine" binding:"required"`
	Dosage       string `json:"dosage" bson:"dosage"`
	Frequency    string `json:"frequency" bson:"frequency"`
	Duration     string `json:"duration" bson:"duration"`
	Instructions string `json:"instructions,omitempty" bson:"instructions,omitempty"`
}

type VitalSigns struct {
	BloodPressure    string   `json:"bloodPressure,omitempty" bson:"bloodPressure,omitempty"`
	HeartRate        *int     `json:"heartRate,omitempty" bson:"heartRate,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty" bson:"temperature,omitempty"`
	OxygenSaturation *int     `json:"oxygenSaturation,omitempty" bson:"oxygenSaturation,omitempty"`
	Weight           *float64 `json:"weight,omitempty" bson:"weight,omitempty"`
	Height           *float64 `json:"height,omitempty" bson:"height,omitempty"`
	BMI              *float64 `json:"bmi,omitempty" bson:"bmi,omitempty"`
}

// FileURL describes an attachment stored elsewhere.
type FileURL struct {
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url" binding:"required"`
	Type string `json:"type,omitempty" bson:"type,omitempty"`
}
