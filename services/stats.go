package services

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
)

type StatsService struct {
	stats StatsStore
}

func NewStatsService(stats StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

/*
* Admin only
* Count users per role, appointments per status, records per status and hospitals
 */
func (s *StatsService) Get(ctx context.Context, requester role.Requester) (*models.Stats, error) {
	if !requester.IsAdmin() {
		return nil, util.Forbidden(util.ONLY_ADMIN)
	}
	users, err := s.stats.CountUsersByRole(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error from CountUsersByRole")
		return nil, util.Internal(err)
	}
	appointments, err := s.stats.CountAppointmentsByStatus(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error from CountAppointmentsByStatus")
		return nil, util.Internal(err)
	}
	records, err := s.stats.CountHealthRecordsByStatus(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error from CountHealthRecordsByStatus")
		return nil, util.Internal(err)
	}
	hospitals, err := s.stats.CountHospitals(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error from CountHospitals")
		return nil, util.Internal(err)
	}
	return &models.Stats{
		Users:         withZeroes(users, string(role.ADMIN), string(role.DOCTOR), string(role.PATIENT)),
		Appointments:  withZeroes(appointments, appointmentStatusNames()...),
		HealthRecords: withZeroes(records, string(models.RecordActive), string(models.RecordArchived), string(models.RecordDeleted)),
		Hospitals:     hospitals,
	}, nil
}

func appointmentStatusNames() []string {
	return []string{
		string(models.StatusPending), string(models.StatusScheduled), string(models.StatusConfirmed),
		string(models.StatusCompleted), string(models.StatusCancelled),
	}
}

// withZeroes fills missing keys with 0.
func withZeroes(counts map[string]int64, keys ...string) map[string]int64 {
	out := make(map[string]int64, len(keys))
	for _, key := range keys {
		out[key] = 0
	}
	for key, n := range counts {
		out[key] = n
	}
	return out
}
