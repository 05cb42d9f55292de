package services

import (
	"context"
	"errors"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const systemActor = "system"

type AppointmentService struct {
	appointments       AppointmentStore
	users              UserStore
	locker             SlotLocker
	cache              Cache
	recorder           Recorder
	enforceHoursForAll bool
	now                func() time.Time
}

type AppointmentOption func(*AppointmentService)

func WithAppointmentCache(c Cache) AppointmentOption {
	return func(s *AppointmentService) { s.cache = c }
}

func WithRecorder(r Recorder) AppointmentOption {
	return func(s *AppointmentService) { s.recorder = r }
}

// WithHoursForAll applies the consultation-hours check to every requester, not just doctors.
func WithHoursForAll(enabled bool) AppointmentOption {
	return func(s *AppointmentService) { s.enforceHoursForAll = enabled }
}

func WithClock(now func() time.Time) AppointmentOption {
	return func(s *AppointmentService) { s.now = now }
}

func NewAppointmentService(appointments AppointmentStore, users UserStore, locker SlotLocker, opts ...AppointmentOption) *AppointmentService {
	s := &AppointmentService{
		appointments: appointments,
		users:        users,
		locker:       locker,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

/*
* Patients may only book for themselves
* Validate required fields, date, time, duration and consultation type
* Doctor must exist, be a DOCTOR and be verified; patient must be a PATIENT
* Doctors booking on a patient's behalf must stay inside consultation hours
* Lock the slot, check for an active booking, insert
 */
func (s *AppointmentService) Create(ctx context.Context, requester role.Requester, in models.AppointmentInput) (*models.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.create",
		attribute.String("doctor_id", in.DoctorID),
		attribute.String("requester_role", string(requester.Role)))
	appointment, err := s.create(ctx, requester, in)
	endSpan(span, err)
	s.observeBooking(err)
	return appointment, err
}

func (s *AppointmentService) create(ctx context.Context, requester role.Requester, in models.AppointmentInput) (*models.Appointment, error) {
	in.DoctorID, in.PatientID = trimmed(in.DoctorID), trimmed(in.PatientID)
	in.Date, in.Time, in.Reason = trimmed(in.Date), trimmed(in.Time), trimmed(in.Reason)

	if requester.IsPatient() && in.PatientID != requester.ID {
		return nil, util.Forbidden(util.PATIENT_SELF_BOOKING_ONLY)
	}
	if err := validateAppointmentInput(in); err != nil {
		return nil, err
	}
	day, err := util.NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	if _, err := util.ParseClock(in.Time); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		Doctor:           in.DoctorID,
		Patient:          in.PatientID,
		Hospital:         trimmed(in.HospitalID),
		Date:             day,
		Time:             in.Time,
		Duration:         models.DefaultDuration,
		ConsultationType: models.InPerson,
		Reason:           in.Reason,
		Notes:            in.Notes,
	}
	if in.Duration != nil {
		if *in.Duration <= 0 {
			return nil, util.Validation(util.INVALID_DURATION)
		}
		appointment.Duration = *in.Duration
	}
	if in.ConsultationType != nil && *in.ConsultationType != "" {
		if !in.ConsultationType.IsValid() {
			return nil, util.Validation(util.INVALID_CONSULTATION)
		}
		appointment.ConsultationType = *in.ConsultationType
	}
	status, err := initialStatus(requester, in.Status)
	if err != nil {
		return nil, err
	}
	appointment.SetStatus(status)

	doctor, err := s.verifiedDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePatient(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if s.checksHours(requester) {
		if err := withinConsultationHours(doctor, in.Time); err != nil {
			return nil, err
		}
	}

	now := s.now()
	appointment.CreatedAt, appointment.UpdatedAt = now, now
	appointment.CreatedBy, appointment.UpdatedBy = requester.ID, requester.ID

	unlock, err := lockSlot(ctx, s.locker, slotLockKey(appointment.Doctor, day, appointment.Time))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.ensureSlotFree(ctx, appointment.Doctor, day, appointment.Time, ""); err != nil {
		return nil, err
	}
	if err := s.appointments.InsertAppointment(ctx, appointment); err != nil {
		if errors.Is(err, util.ErrDuplicateKey) {
			return nil, util.Conflict(util.SLOT_ALREADY_BOOKED)
		}
		log.Error().Err(err).Msg("Error from InsertAppointment")
		return nil, util.Internal(err)
	}
	log.Info().
		Str("appointment_id", appointment.ID.Hex()).
		Str("doctor_id", appointment.Doctor).
		Str("date", day.Format(util.DateLayout)).
		Str("time", appointment.Time).
		Msg("Appointment booked")
	return appointment, nil
}

func validateAppointmentInput(in models.AppointmentInput) error {
	checks := []struct{ value, message string }{
		{in.DoctorID, util.DOCTOR_ID_REQUIRED},
		{in.PatientID, util.PATIENT_ID_REQUIRED},
		{in.Date, util.DATE_REQUIRED},
		{in.Time, util.TIME_REQUIRED},
		{in.Reason, util.REASON_REQUIRED},
	}
	for _, check := range checks {
		if err := requireField(check.value, check.message); err != nil {
			return err
		}
	}
	return nil
}

func initialStatus(requester role.Requester, requested *models.AppointmentStatus) (models.AppointmentStatus, error) {
	if requested == nil || *requested == "" || *requested == models.StatusPending {
		return models.StatusPending, nil
	}
	if *requested != models.StatusScheduled {
		return "", util.Validation(util.INVALID_STATUS)
	}
	if !requester.Is(role.DOCTOR, role.ADMIN) {
		return "", util.Forbidden(util.SCHEDULED_STATUS_FORBIDDEN)
	}
	return models.StatusScheduled, nil
}

func (s *AppointmentService) checksHours(requester role.Requester) bool {
	return requester.IsDoctor() || s.enforceHoursForAll
}

// withinConsultationHours compares colon-stripped times as integers over [start, end).
func withinConsultationHours(doctor *models.User, clock string) error {
	hours := doctor.HoursOrDefault()
	start, err := util.ClockNumber(hours.Start)
	if err != nil {
		return util.Validation(util.INVALID_CONSULTATION_HRS)
	}
	end, err := util.ClockNumber(hours.End)
	if err != nil {
		return util.Validation(util.INVALID_CONSULTATION_HRS)
	}
	requested, err := util.ClockNumber(clock)
	if err != nil {
		return err
	}
	if requested < start || requested >= end {
		return util.Validation(util.OUTSIDE_CONSULTATION)
	}
	return nil
}

func (s *AppointmentService) verifiedDoctor(ctx context.Context, doctorID string) (*models.User, error) {
	doctor, err := s.users.FindUserByID(ctx, doctorID)
	if err != nil {
		return nil, storeError("FindUserByID", err, util.DOCTOR_NOT_FOUND)
	}
	if !doctor.IsVerifiedDoctor() {
		return nil, util.NotFound(util.DOCTOR_NOT_FOUND)
	}
	return doctor, nil
}

func (s *AppointmentService) ensurePatient(ctx context.Context, patientID string) error {
	patient, err := s.users.FindUserByID(ctx, patientID)
	if err != nil {
		return storeError("FindUserByID", err, util.PATIENT_NOT_FOUND)
	}
	if patient.Role != role.PATIENT {
		return util.NotFound(util.PATIENT_NOT_FOUND)
	}
	return nil
}

func (s *AppointmentService) ensureSlotFree(ctx context.Context, doctorID string, day time.Time, clock, excludeID string) error {
	count, err := s.appointments.CountActiveInSlot(ctx, doctorID, day, clock, excludeID)
	if err != nil {
		log.Error().Err(err).Msg("Error from CountActiveInSlot")
		return util.Internal(err)
	}
	if count > 0 {
		return util.Conflict(util.SLOT_ALREADY_BOOKED)
	}
	return nil
}

func (s *AppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	return cacheThrough(ctx, s.cache, util.AppointmentKey+id, func(ctx context.Context) (*models.Appointment, error) {
		return s.loadFresh(ctx, id)
	})
}

// loadFresh bypasses the cache; used before writes.
func (s *AppointmentService) loadFresh(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.appointments.FindAppointmentByID(ctx, id)
	if err != nil {
		return nil, storeError("FindAppointmentByID", err, util.APPOINTMENT_NOT_FOUND)
	}
	return appointment, nil
}

func canAccess(requester role.Requester, appointment *models.Appointment) bool {
	return requester.IsAdmin() || appointment.IsParticipant(requester.ID)
}

func (s *AppointmentService) Get(ctx context.Context, requester role.Requester, id string) (*models.Appointment, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, appointment) {
		return nil, util.Forbidden(util.NOT_APPOINTMENT_PARTICIPANT)
	}
	return appointment, nil
}

// ListAppointmentsQuery carries the raw query string filters.
type ListAppointmentsQuery struct {
	Status           string `form:"status"`
	StartDate        string `form:"startDate"`
	EndDate          string `form:"endDate"`
	ConsultationType string `form:"consultationType"`
	DoctorID         string `form:"doctorId"`
	PatientID        string `form:"patientId"`
	Page             int64  `form:"page"`
	Limit            int64  `form:"limit"`
}

/*
* Patients see their own appointments, doctors the ones assigned to them
* Admins see all and may narrow by doctorId or patientId
* Dates bound the appointment date inclusively
 */
func (s *AppointmentService) List(ctx context.Context, requester role.Requester, q ListAppointmentsQuery) (util.Page[models.Appointment], error) {
	filter := models.AppointmentFilter{Page: q.Page, Limit: q.Limit}
	switch requester.Role {
	case role.PATIENT:
		filter.PatientID = requester.ID
		filter.DoctorID = trimmed(q.DoctorID)
	case role.DOCTOR:
		filter.DoctorID = requester.ID
		filter.PatientID = trimmed(q.PatientID)
	default:
		filter.DoctorID, filter.PatientID = trimmed(q.DoctorID), trimmed(q.PatientID)
	}
	if q.Status != "" {
		status := models.AppointmentStatus(q.Status)
		if !status.IsValid() {
			return util.Page[models.Appointment]{}, util.Validation(util.INVALID_STATUS)
		}
		filter.Status = status
	}
	if q.ConsultationType != "" {
		ct := models.ConsultationType(q.ConsultationType)
		if !ct.IsValid() {
			return util.Page[models.Appointment]{}, util.Validation(util.INVALID_CONSULTATION)
		}
		filter.ConsultationType = ct
	}
	if q.StartDate != "" {
		start, err := util.NormalizeDate(q.StartDate)
		if err != nil {
			return util.Page[models.Appointment]{}, err
		}
		filter.StartDate = &start
	}
	if q.EndDate != "" {
		end, err := util.NormalizeDate(q.EndDate)
		if err != nil {
			return util.Page[models.Appointment]{}, err
		}
		filter.EndDate = &end
	}
	page, limit, err := util.PageBounds(filter.Page, filter.Limit)
	if err != nil {
		return util.Page[models.Appointment]{}, err
	}
	filter.Page, filter.Limit = page, limit

	items, total, err := s.appointments.ListAppointments(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Error from ListAppointments")
		return util.Page[models.Appointment]{}, util.Internal(err)
	}
	return util.NewPage(items, total, page, limit), nil
}

/*
* Only the appointment's patient, doctor or an admin may update it
* Only allow-listed fields reach this point
* Moving a terminal appointment is rejected
* Moving an active appointment re-checks the new slot under its lock
 */
func (s *AppointmentService) Update(ctx context.Context, requester role.Requester, id string, patch models.AppointmentPatch) (*models.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.update", attribute.String("appointment_id", id))
	appointment, err := s.update(ctx, requester, id, patch)
	endSpan(span, err)
	return appointment, err
}

func (s *AppointmentService) update(ctx context.Context, requester role.Requester, id string, patch models.AppointmentPatch) (*models.Appointment, error) {
	appointment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, appointment) {
		return nil, util.Forbidden(util.NOT_APPOINTMENT_PARTICIPANT)
	}
	if patch.Reschedules() && !appointment.Status.IsActive() {
		return nil, util.InvalidState(util.CANNOT_RESCHEDULE)
	}

	previousDate, previousTime := appointment.Date, appointment.Time
	if err := applyAppointmentPatch(appointment, patch); err != nil {
		return nil, err
	}
	moved := !appointment.Date.Equal(previousDate) || appointment.Time != previousTime
	appointment.UpdatedAt = s.now()
	appointment.UpdatedBy = requester.ID

	if moved {
		if s.checksHours(requester) {
			doctor, err := s.verifiedDoctor(ctx, appointment.Doctor)
			if err != nil {
				return nil, err
			}
			if err := withinConsultationHours(doctor, appointment.Time); err != nil {
				return nil, err
			}
		}
		unlock, err := lockSlot(ctx, s.locker, slotLockKey(appointment.Doctor, appointment.Date, appointment.Time))
		if err != nil {
			return nil, err
		}
		defer unlock()
		if err := s.ensureSlotFree(ctx, appointment.Doctor, appointment.Date, appointment.Time, id); err != nil {
			return nil, err
		}
	}

	if err := s.appointments.ReplaceAppointment(ctx, appointment); err != nil {
		switch {
		case errors.Is(err, util.ErrDuplicateKey):
			return nil, util.Conflict(util.SLOT_ALREADY_BOOKED)
		case errors.Is(err, util.ErrNoDocument):
			return nil, util.Conflict(util.APPOINTMENT_CHANGED)
		}
		log.Error().Err(err).Msg("Error from ReplaceAppointment")
		return nil, util.Internal(err)
	}
	cacheInvalidate(ctx, s.cache, util.AppointmentKey+id)
	return appointment, nil
}

func applyAppointmentPatch(a *models.Appointment, patch models.AppointmentPatch) error {
	if patch.Date != nil {
		day, err := util.NormalizeDate(*patch.Date)
		if err != nil {
			return err
		}
		a.Date = day
	}
	if patch.Time != nil {
		clock := trimmed(*patch.Time)
		if _, err := util.ParseClock(clock); err != nil {
			return err
		}
		a.Time = clock
	}
	if patch.Duration != nil {
		if *patch.Duration <= 0 {
			return util.Validation(util.INVALID_DURATION)
		}
		a.Duration = *patch.Duration
	}
	if patch.Reason != nil {
		if err := requireField(*patch.Reason, util.REASON_REQUIRED); err != nil {
			return err
		}
		a.Reason = trimmed(*patch.Reason)
	}
	if patch.Notes != nil {
		a.Notes = *patch.Notes
	}
	if patch.ConsultationType != nil {
		if !patch.ConsultationType.IsValid() {
			return util.Validation(util.INVALID_CONSULTATION)
		}
		a.ConsultationType = *patch.ConsultationType
	}
	if patch.Hospital != nil {
		a.Hospital = trimmed(*patch.Hospital)
	}
	return nil
}

/*
* Same access rule as update
* Only Pending, Scheduled or Confirmed appointments can be cancelled
* The write is conditional on the status still being active
 */
func (s *AppointmentService) Cancel(ctx context.Context, requester role.Requester, id, reason string) (*models.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.cancel", attribute.String("appointment_id", id))
	appointment, err := s.cancel(ctx, requester, id, reason)
	endSpan(span, err)
	return appointment, err
}

func (s *AppointmentService) cancel(ctx context.Context, requester role.Requester, id, reason string) (*models.Appointment, error) {
	appointment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, appointment) {
		return nil, util.Forbidden(util.NOT_APPOINTMENT_PARTICIPANT)
	}
	if !appointment.Status.IsActive() {
		return nil, util.InvalidState(util.CANNOT_CANCEL)
	}
	return s.transition(ctx, id, models.StatusChange{
		From:               models.ActiveStatuses,
		To:                 models.StatusCancelled,
		CancellationReason: trimmed(reason),
		UpdatedBy:          requester.ID,
	}, util.CANNOT_CANCEL)
}

// Confirm moves a Pending or Scheduled appointment to Confirmed; assigned doctor or admin only.
func (s *AppointmentService) Confirm(ctx context.Context, requester role.Requester, id string) (*models.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.confirm", attribute.String("appointment_id", id))
	appointment, err := s.doctorTransition(ctx, requester, id,
		[]models.AppointmentStatus{models.StatusPending, models.StatusScheduled},
		models.StatusConfirmed, util.CANNOT_CONFIRM)
	endSpan(span, err)
	return appointment, err
}

// Complete closes a Scheduled or Confirmed appointment; assigned doctor or admin only.
func (s *AppointmentService) Complete(ctx context.Context, requester role.Requester, id string) (*models.Appointment, error) {
	ctx, span := startSpan(ctx, "appointments.complete", attribute.String("appointment_id", id))
	appointment, err := s.doctorTransition(ctx, requester, id, completable, models.StatusCompleted, util.CANNOT_COMPLETE)
	endSpan(span, err)
	return appointment, err
}

func (s *AppointmentService) doctorTransition(ctx context.Context, requester role.Requester, id string, from []models.AppointmentStatus, to models.AppointmentStatus, invalid string) (*models.Appointment, error) {
	appointment, err := s.loadFresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && !(requester.IsDoctor() && appointment.Doctor == requester.ID) {
		return nil, util.Forbidden(util.ONLY_ASSIGNED_DOCTOR)
	}
	if !statusIn(appointment.Status, from) {
		return nil, util.InvalidState(invalid)
	}
	return s.transition(ctx, id, models.StatusChange{From: from, To: to, UpdatedBy: requester.ID}, invalid)
}

func (s *AppointmentService) transition(ctx context.Context, id string, change models.StatusChange, invalid string) (*models.Appointment, error) {
	change.UpdatedAt = s.now()
	updated, err := s.appointments.TransitionAppointment(ctx, id, change)
	if errors.Is(err, util.ErrNoDocument) {
		// the status moved on between the read and the conditional write
		return nil, util.InvalidState(invalid)
	}
	if err != nil {
		log.Error().Err(err).Msg("Error from TransitionAppointment")
		return nil, util.Internal(err)
	}
	cacheInvalidate(ctx, s.cache, util.AppointmentKey+id)
	if s.recorder != nil {
		s.recorder.ObserveTransition(string(change.To))
	}
	log.Info().Str("appointment_id", id).Str("status", string(change.To)).Msg("Appointment status changed")
	return updated, nil
}

func statusIn(status models.AppointmentStatus, statuses []models.AppointmentStatus) bool {
	for _, candidate := range statuses {
		if status == candidate {
			return true
		}
	}
	return false
}

var completable = []models.AppointmentStatus{models.StatusScheduled, models.StatusConfirmed}

/*
* Fetch Scheduled and Confirmed appointments dated today or earlier
* Complete the ones whose date + time + duration has passed
* Appointments that changed status in the meantime are skipped
 */
func (s *AppointmentService) CompleteElapsed(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.appointments.FindDueForCompletion(ctx, completable, util.StartOfDay(now.UTC()))
	if err != nil {
		log.Error().Err(err).Msg("Error from FindDueForCompletion")
		return 0, util.Internal(err)
	}
	completed := 0
	for _, appointment := range due {
		if !appointment.EndsAt().Before(now) {
			continue
		}
		id := appointment.ID.Hex()
		_, err := s.transition(ctx, id, models.StatusChange{
			From:      completable,
			To:        models.StatusCompleted,
			UpdatedBy: systemActor,
		}, util.CANNOT_COMPLETE)
		if util.IsKind(err, util.KindInvalidState) {
			continue
		}
		if err != nil {
			return completed, err
		}
		completed++
	}
	if s.recorder != nil {
		s.recorder.ObserveAutoCompleted(completed)
	}
	return completed, nil
}

func (s *AppointmentService) observeBooking(err error) {
	if s.recorder == nil {
		return
	}
	outcome := "created"
	if err != nil {
		outcome = string(util.KindOf(err))
	}
	s.recorder.ObserveBooking(outcome)
}
