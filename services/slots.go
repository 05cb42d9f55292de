package services

import (
	"context"
	"iter"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// SlotInterval is fixed for every doctor.
const SlotInterval = 30 * time.Minute

// HalfHourTicks yields "HH:MM" ticks from start while the tick is before end.
func HalfHourTicks(start, end string) iter.Seq[string] {
	return func(yield func(string) bool) {
		startTime, err := time.Parse(util.ClockLayout, start)
		if err != nil {
			return
		}
		endTime, err := time.Parse(util.ClockLayout, end)
		if err != nil {
			return
		}
		for startTime.Before(endTime) {
			if !yield(startTime.Format(util.ClockLayout)) {
				return
			}
			startTime = startTime.Add(SlotInterval)
		}
	}
}

/*
* doctorId and date are required; consultation type defaults to In-Person
* Doctor must exist with role DOCTOR
* Read the doctor's active appointments for that day
* Yield every half-hour tick in [start, end) that no active appointment holds
 */
func (s *AppointmentService) AvailableSlots(ctx context.Context, doctorID, date, consultationType string) (iter.Seq[models.Slot], error) {
	ctx, span := startSpan(ctx, "appointments.slots", attribute.String("doctor_id", doctorID))
	slots, err := s.availableSlots(ctx, trimmed(doctorID), trimmed(date), consultationType)
	endSpan(span, err)
	return slots, err
}

func (s *AppointmentService) availableSlots(ctx context.Context, doctorID, date, consultationType string) (iter.Seq[models.Slot], error) {
	if err := requireField(doctorID, util.DOCTOR_ID_REQUIRED); err != nil {
		return nil, err
	}
	if err := requireField(date, util.DATE_REQUIRED); err != nil {
		return nil, err
	}
	day, err := util.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	ct := models.InPerson
	if consultationType != "" {
		ct = models.ConsultationType(consultationType)
		if !ct.IsValid() {
			return nil, util.Validation(util.INVALID_CONSULTATION)
		}
	}

	doctor, err := s.users.FindUserByID(ctx, doctorID)
	if err != nil {
		return nil, storeError("FindUserByID", err, util.DOCTOR_NOT_FOUND)
	}
	if doctor.Role != role.DOCTOR {
		return nil, util.NotFound(util.DOCTOR_NOT_FOUND)
	}

	booked, err := s.appointments.FindActiveAppointments(ctx, doctorID, day)
	if err != nil {
		log.Error().Err(err).Msg("Error from FindActiveAppointments")
		return nil, util.Internal(err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, appointment := range booked {
		taken[appointment.Time] = struct{}{}
	}

	hours := doctor.HoursOrDefault()
	return func(yield func(models.Slot) bool) {
		for tick := range HalfHourTicks(hours.Start, hours.End) {
			if _, ok := taken[tick]; ok {
				continue
			}
			if !yield(models.Slot{Time: tick, Available: true, ConsultationType: ct}) {
				return
			}
		}
	}, nil
}
