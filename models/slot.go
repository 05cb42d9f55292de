package models

type Slot struct {
	Time             string           `json:"time"`
	Available        bool             `json:"available"`
	ConsultationType ConsultationType `json:"consultationType"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users         map[string]int64 `json:"users"`
	Appointments  map[string]int64 `json:"appointments"`
	HealthRecords map[string]int64 `json:"healthRecords"`
	Hospitals     int64            `json:"hospitals"`
}
