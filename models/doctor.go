package models

const (
	DefaultConsultationStart = "09:00"
	DefaultConsultationEnd   = "17:00"
)

type ConsultationHours struct {
	Start string `json:"start" bson:"start" binding:"required,clock"`
	End   string `json:"end" bson:"end" binding:"required,clock"`
}

// HoursOrDefault returns the doctor's consultation window, falling back to 09:00-17:00.
func (u *User) HoursOrDefault() ConsultationHours {
	hours := ConsultationHours{Start: DefaultConsultationStart, End: DefaultConsultationEnd}
	if u.ConsultationHours != nil {
		if u.ConsultationHours.Start != "" {
			hours.Start = u.ConsultationHours.Start
		}
		if u.ConsultationHours.End != "" {
			hours.End = u.ConsultationHours.End
		}
	}
	return hours
}
