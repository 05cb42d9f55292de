package role

type Role string

const (
	ADMIN   Role = "ADMIN"
	DOCTOR  Role = "DOCTOR"
	PATIENT Role = "PATIENT"
)

func (r Role) IsValid() bool {
	switch r {
	case ADMIN, DOCTOR, PATIENT:
		return true
	}
	return false
}

// Requester is the verified identity behind a request, taken from the bearer token.
type Requester struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (r Requester) IsAdmin() bool   { return r.Role == ADMIN }
func (r Requester) IsDoctor() bool  { return r.Role == DOCTOR }
func (r Requester) IsPatient() bool { return r.Role == PATIENT }

// Is reports whether the requester holds one of roles.
func (r Requester) Is(roles ...Role) bool {
	for _, candidate := range roles {
		if r.Role == candidate {
			return true
		}
	}
	return false
}
