package services

import (
	"context"
	"errors"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
)

type HealthRecordService struct {
	records      HealthRecordStore
	users        UserStore
	appointments AppointmentStore
	cache        Cache
	now          func() time.Time
}

func NewHealthRecordService(records HealthRecordStore, users UserStore, appointments AppointmentStore, c Cache) *HealthRecordService {
	return &HealthRecordService{records: records, users: users, appointments: appointments, cache: c, now: time.Now}
}

/*
* Only doctors and admins create records
* A doctor always authors the record; any doctorId in the body is ignored
* patientId and diagnosis are required, plus doctorId when an admin creates it
* Patient must exist with role PATIENT
* Default prescriptions to empty, visitDate to now, status to Active
 */
func (s *HealthRecordService) Create(ctx context.Context, requester role.Requester, in models.HealthRecordInput) (*models.HealthRecord, error) {
	if !requester.Is(role.DOCTOR, role.ADMIN) {
		return nil, util.Forbidden(util.ONLY_DOCTOR_OR_ADMIN)
	}
	if requester.IsDoctor() {
		in.DoctorID = requester.ID
	}
	in.PatientID, in.DoctorID, in.Diagnosis = trimmed(in.PatientID), trimmed(in.DoctorID), trimmed(in.Diagnosis)
	if err := requireField(in.PatientID, util.PATIENT_ID_REQUIRED); err != nil {
		return nil, err
	}
	if err := requireField(in.DoctorID, util.DOCTOR_ID_REQUIRED); err != nil {
		return nil, err
	}
	if err := requireField(in.Diagnosis, util.DIAGNOSIS_REQUIRED); err != nil {
		return nil, err
	}
	if err := s.ensureRole(ctx, in.PatientID, role.PATIENT, util.PATIENT_NOT_FOUND); err != nil {
		return nil, err
	}
	if requester.IsAdmin() {
		if err := s.ensureRole(ctx, in.DoctorID, role.DOCTOR, util.DOCTOR_NOT_FOUND); err != nil {
			return nil, err
		}
	}

	now := s.now()
	record := &models.HealthRecord{
		Patient:       in.PatientID,
		Doctor:        in.DoctorID,
		Hospital:      trimmed(in.HospitalID),
		Diagnosis:     in.Diagnosis,
		Prescriptions: in.Prescriptions,
		VitalSigns:    in.VitalSigns,
		Notes:         in.Notes,
		VisitDate:     now,
		FileURLs:      in.FileURLs,
		Status:        models.RecordActive,
		CreatedAt:     now,
		CreatedBy:     requester.ID,
		UpdatedAt:     now,
		UpdatedBy:     requester.ID,
	}
	if in.VisitDate != "" {
		visit, err := util.NormalizeDate(in.VisitDate)
		if err != nil {
			return nil, err
		}
		record.VisitDate = visit
	}
	if in.FollowUpDate != "" {
		followUp, err := util.NormalizeDate(in.FollowUpDate)
		if err != nil {
			return nil, err
		}
		record.FollowUpDate = &followUp
	}
	return s.insert(ctx, record)
}

/*
* The appointment must be Completed
* Only its doctor or an admin may write the record
* Patient, doctor, hospital and visit date come from the appointment
* No reference back to the appointment is stored
 */
func (s *HealthRecordService) CreateFromAppointment(ctx context.Context, requester role.Requester, appointmentID string, in models.HealthRecordInput) (*models.HealthRecord, error) {
	if !requester.Is(role.DOCTOR, role.ADMIN) {
		return nil, util.Forbidden(util.ONLY_DOCTOR_OR_ADMIN)
	}
	appointment, err := s.appointments.FindAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, storeError("FindAppointmentByID", err, util.APPOINTMENT_NOT_FOUND)
	}
	if requester.IsDoctor() && appointment.Doctor != requester.ID {
		return nil, util.Forbidden(util.ONLY_ASSIGNED_DOCTOR)
	}
	if appointment.Status != models.StatusCompleted {
		return nil, util.InvalidState(util.APPOINTMENT_NOT_COMPLETE)
	}
	if err := requireField(in.Diagnosis, util.DIAGNOSIS_REQUIRED); err != nil {
		return nil, err
	}

	now := s.now()
	record := &models.HealthRecord{
		Patient:       appointment.Patient,
		Doctor:        appointment.Doctor,
		Hospital:      appointment.Hospital,
		Diagnosis:     trimmed(in.Diagnosis),
		Prescriptions: in.Prescriptions,
		VitalSigns:    in.VitalSigns,
		Notes:         in.Notes,
		VisitDate:     appointment.Date,
		FileURLs:      in.FileURLs,
		Status:        models.RecordActive,
		CreatedAt:     now,
		CreatedBy:     requester.ID,
		UpdatedAt:     now,
		UpdatedBy:     requester.ID,
	}
	if in.FollowUpDate != "" {
		followUp, err := util.NormalizeDate(in.FollowUpDate)
		if err != nil {
			return nil, err
		}
		record.FollowUpDate = &followUp
	}
	return s.insert(ctx, record)
}

func (s *HealthRecordService) insert(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error) {
	if record.Prescriptions == nil {
		record.Prescriptions = []models.Prescription{}
	}
	if record.FileURLs == nil {
		record.FileURLs = []models.FileURL{}
	}
	if err := s.records.InsertHealthRecord(ctx, record); err != nil {
		log.Error().Err(err).Msg("Error from InsertHealthRecord")
		return nil, util.Internal(err)
	}
	log.Info().Str("record_id", record.ID.Hex()).Str("doctor_id", record.Doctor).Msg("Health record created")
	return record, nil
}

func (s *HealthRecordService) ensureRole(ctx context.Context, userID string, want role.Role, notFound string) error {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return storeError("FindUserByID", err, notFound)
	}
	if user.Role != want {
		return util.NotFound(notFound)
	}
	return nil
}

func (s *HealthRecordService) loadFresh(ctx context.Context, id string) (*models.HealthRecord, error) {
	record, err := s.records.FindHealthRecordByID(ctx, id)
	if err != nil {
		return nil, storeError("FindHealthRecordByID", err, util.HEALTH_RECORD_NOT_FOUND)
	}
	return record, nil
}

// Get returns the record whatever its status, deleted records included.
func (s *HealthRecordService) Get(ctx context.Context, requester role.Requester, id string) (*models.HealthRecord, error) {
	record, err := cacheThrough(ctx, s.cache, util.HealthRecordKey+id, func(ctx context.Context) (*models.HealthRecord, error) {
		return s.loadFresh(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && record.Patient != requester.ID && record.Doctor != requester.ID {
		return nil, util.Forbidden(util.NOT_RECORD_PARTICIPANT)
	}
	return record, nil
}

type ListHealthRecordsQuery struct {
	Status    string `form:"status"`
	PatientID string `form:"patientId"`
	Page      int64  `form:"page"`
	Limit     int64  `form:"limit"`
}

/*
* Patients see their own records, doctors the ones they authored, admins all
* Listing defaults to Active records
 */
func (s *HealthRecordService) List(ctx context.Context, requester role.Requester, q ListHealthRecordsQuery) (util.Page[models.HealthRecord], error) {
	filter := models.HealthRecordFilter{Status: models.RecordActive}
	switch requester.Role {
	case role.PATIENT:
		filter.PatientID = requester.ID
	case role.DOCTOR:
		filter.DoctorID = requester.ID
		filter.PatientID = trimmed(q.PatientID)
	default:
		filter.PatientID = trimmed(q.PatientID)
	}
	if q.Status != "" {
		status := models.RecordStatus(q.Status)
		if !status.IsValid() {
			return util.Page[models.HealthRecord]{}, util.Validation(util.INVALID_STATUS)
		}
		filter.Status = status
	}
	page, limit, err := util.PageBounds(q.Page, q.Limit)
	if err != nil {
		return util.Page[models.HealthRecord]{}, err
	}
	filter.Page, filter.Limit = page, limit

	items, total, err := s.records.ListHealthRecords(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Error from ListHealthRecords")
		return util.Page[models.HealthRecord]{}, util.Internal(err)
	}
	return util.NewPage(items, total, page, limit), nil
}

func canModifyRecord(requester role.Requester, record *models.HealthRecord) bool {
	return requester.IsAdmin() || (requester.IsDoctor() && record.Doctor == requester.ID)
}

/*
* Only an admin or the authoring doctor may update
* Deleted records are frozen
* Status may only move between Active and Archived
 */
func (s *HealthRecordService) Update(ctx context.Context, requester role.Requester, id string, patch models.HealthRecordPatch) (*models.HealthRecord, error) {
	record, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyRecord(requester, record) {
		return nil, util.Forbidden(util.ONLY_AUTHORING_DOCTOR)
	}
	if record.Status == models.RecordDeleted {
		return nil, util.InvalidState(util.RECORD_DELETED)
	}
	if err := applyHealthRecordPatch(record, patch); err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now()
	record.UpdatedBy = requester.ID
	return s.save(ctx, record)
}

func applyHealthRecordPatch(r *models.HealthRecord, patch models.HealthRecordPatch) error {
	if patch.Diagnosis != nil {
		if err := requireField(*patch.Diagnosis, util.DIAGNOSIS_REQUIRED); err != nil {
			return err
		}
		r.Diagnosis = trimmed(*patch.Diagnosis)
	}
	if patch.Prescriptions != nil {
		r.Prescriptions = *patch.Prescriptions
		if r.Prescriptions == nil {
			r.Prescriptions = []models.Prescription{}
		}
	}
	if patch.VitalSigns != nil {
		r.VitalSigns = patch.VitalSigns
	}
	if patch.Notes != nil {
		r.Notes = *patch.Notes
	}
	if patch.VisitDate != nil {
		visit, err := util.NormalizeDate(*patch.VisitDate)
		if err != nil {
			return err
		}
		r.VisitDate = visit
	}
	if patch.FollowUpDate != nil {
		if trimmed(*patch.FollowUpDate) == "" {
			r.FollowUpDate = nil
		} else {
			followUp, err := util.NormalizeDate(*patch.FollowUpDate)
			if err != nil {
				return err
			}
			r.FollowUpDate = &followUp
		}
	}
	if patch.FileURLs != nil {
		r.FileURLs = *patch.FileURLs
		if r.FileURLs == nil {
			r.FileURLs = []models.FileURL{}
		}
	}
	if patch.Hospital != nil {
		r.Hospital = trimmed(*patch.Hospital)
	}
	if patch.Status != nil {
		if *patch.Status != models.RecordActive && *patch.Status != models.RecordArchived {
			return util.Validation(util.RECORD_STATUS_PATCH)
		}
		r.Status = *patch.Status
	}
	return nil
}

/*
* Only an admin or the authoring doctor may delete
* Flip status to Deleted and keep every other field
 */
func (s *HealthRecordService) Delete(ctx context.Context, requester role.Requester, id string) (*models.HealthRecord, error) {
	if !requester.Is(role.DOCTOR, role.ADMIN) {
		return nil, util.Forbidden(util.ONLY_DOCTOR_OR_ADMIN)
	}
	record, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyRecord(requester, record) {
		return nil, util.Forbidden(util.ONLY_AUTHORING_DOCTOR)
	}
	if record.Status == models.RecordDeleted {
		return record, nil
	}
	deleted, err := s.records.SoftDeleteHealthRecord(ctx, id, s.now(), requester.ID)
	if errors.Is(err, util.ErrNoDocument) {
		// deleted by someone else since the read
		return s.loadFresh(ctx, id)
	}
	if err != nil {
		log.Error().Err(err).Msg("Error from SoftDeleteHealthRecord")
		return nil, util.Internal(err)
	}
	cacheInvalidate(ctx, s.cache, util.HealthRecordKey+id)
	log.Info().Str("record_id", id).Str("deleted_by", requester.ID).Msg("Health record deleted")
	return deleted, nil
}

/*
* Write only over the copy that was read
* A miss means a concurrent write; a delete wins over the update
 */
func (s *HealthRecordService) save(ctx context.Context, record *models.HealthRecord) (*models.HealthRecord, error) {
	id := record.ID.Hex()
	if err := s.records.ReplaceHealthRecord(ctx, record); err != nil {
		if !errors.Is(err, util.ErrNoDocument) {
			log.Error().Err(err).Msg("Error from ReplaceHealthRecord")
			return nil, util.Internal(err)
		}
		current, err := s.loadFresh(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == models.RecordDeleted {
			return nil, util.InvalidState(util.RECORD_DELETED)
		}
		return nil, util.Conflict(util.RECORD_CHANGED)
	}
	cacheInvalidate(ctx, s.cache, util.HealthRecordKey+id)
	return record, nil
}
