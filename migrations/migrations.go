package migrations

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

type step struct {
	name string
	run  func(ctx context.Context, database *mongo.Database) error
}

// The backfill runs first so the partial slot index sees every active appointment.
var steps = []step{
	{name: "001_backfill_appointment_active", run: BackfillAppointmentActive},
	{name: "002_create_indexes", run: CreateIndexes},
}

// Run applies every migration. Each step is idempotent.
func Run(ctx context.Context, database *mongo.Database) error {
	for _, s := range steps {
		log.Info().Str("migration", s.name).Msg("Running migration")
		if err := s.run(ctx, database); err != nil {
			log.Error().Err(err).Str("migration", s.name).Msg("Migration failed")
			return err
		}
	}
	return nil
}
