package util

const (
	SUCCESS               = "success"
	INTERNAL_SERVER_ERROR = "internal server error"
	INVALID_REQUEST_BODY  = "invalid request body"
	INVALID_ID            = "invalid id"

	AUTHORIZATION_HEADER_REQUIRED = "authorization header required"
	INVALID_AUTHORIZATION_HEADER  = "invalid authorization header format"
	INVALID_TOKEN                 = "invalid or expired token"
	ACCESS_DENIED                 = "you do not have permission to access this resource"

	DOCTOR_ID_REQUIRED       = "doctorId is required"
	PATIENT_ID_REQUIRED      = "patientId is required"
	DATE_REQUIRED            = "date is required"
	TIME_REQUIRED            = "time is required"
	REASON_REQUIRED          = "reason is required"
	DIAGNOSIS_REQUIRED       = "diagnosis is required"
	INVALID_DATE             = "date must be formatted as YYYY-MM-DD"
	INVALID_TIME             = "time must be formatted as HH:MM"
	INVALID_DURATION         = "duration must be a positive number of minutes"
	INVALID_CONSULTATION     = "consultationType must be one of In-Person, Video, Phone"
	INVALID_STATUS           = "invalid status"
	INVALID_PAGINATION       = "page and limit must be positive numbers"
	PAGE_OUT_OF_RANGE        = "page is too large"
	OUTSIDE_CONSULTATION     = "requested time is outside the doctor's consultation hours"
	INVALID_CONSULTATION_HRS = "consultation hours must satisfy start < end"

	DOCTOR_NOT_FOUND        = "doctor not found"
	PATIENT_NOT_FOUND       = "patient not found"
	USER_NOT_FOUND          = "user not found"
	APPOINTMENT_NOT_FOUND   = "appointment not found"
	HEALTH_RECORD_NOT_FOUND = "health record not found"
	HOSPITAL_NOT_FOUND      = "hospital not found"

	PATIENT_SELF_BOOKING_ONLY   = "patients can only book appointments for themselves"
	NOT_APPOINTMENT_PARTICIPANT = "only the appointment's patient, doctor or an admin can access it"
	ONLY_ASSIGNED_DOCTOR        = "only the assigned doctor or an admin can perform this action"
	ONLY_DOCTOR_OR_ADMIN        = "only doctors and admins can manage health records"
	ONLY_AUTHORING_DOCTOR       = "only the authoring doctor or an admin can modify this health record"
	NOT_RECORD_PARTICIPANT      = "only the record's patient, authoring doctor or an admin can view it"
	ONLY_ADMIN                  = "only admins can perform this action"
	ONLY_SELF_OR_ADMIN          = "users can only access their own profile"
	SCHEDULED_STATUS_FORBIDDEN  = "only doctors and admins can book directly as Scheduled"

	SLOT_ALREADY_BOOKED      = "slot already booked"
	SLOT_LOCKED              = "slot is being booked by another request, try again"
	APPOINTMENT_CHANGED      = "appointment was changed by another request, try again"
	RECORD_CHANGED           = "health record was changed by another request, try again"
	USER_CHANGED             = "user was changed by another request, try again"
	HOSPITAL_CHANGED         = "hospital was changed by another request, try again"
	EMAIL_ALREADY_EXISTS     = "a user with this email already exists"
	HOSPITAL_ALREADY_EXISTS  = "a hospital with this name already exists"
	CANNOT_CANCEL            = "cannot cancel an appointment that is Completed or Cancelled"
	CANNOT_CONFIRM           = "only Pending or Scheduled appointments can be confirmed"
	CANNOT_COMPLETE          = "only Scheduled or Confirmed appointments can be completed"
	CANNOT_RESCHEDULE        = "cannot reschedule an appointment that is Completed or Cancelled"
	APPOINTMENT_NOT_COMPLETE = "health records can only be created from Completed appointments"
	RECORD_DELETED           = "health record has been deleted"
	RECORD_STATUS_PATCH      = "status can only be set to Active or Archived"
	NOT_A_DOCTOR             = "user is not a doctor"
	HOSPITAL_NAME_REQUIRED   = "name is required"
	INVALID_HOSPITAL_NAME    = "name must contain letters or digits"
	NAME_REQUIRED            = "name is required"
	INVALID_ROLE             = "role must be one of ADMIN, DOCTOR, PATIENT"
	INVALID_EXPERIENCE       = "experienceYears cannot be negative"
	DOCTOR_FIELDS_ONLY       = "specialty, consultationHours and experienceYears apply to doctors only"
	PATIENT_FIELDS_ONLY      = "bloodGroup, allergies and emergencyContact apply to patients only"

	ASSISTANT_DISABLED = "assistant is not configured"
	MESSAGE_REQUIRED   = "message is required"
	TEXT_REQUIRED      = "text is required"
	EMPTY_ASSISTANT    = "assistant returned an empty response"
)
