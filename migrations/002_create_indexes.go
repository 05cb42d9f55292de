package migrations

import (
	"context"
	"fmt"

	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActiveSlotIndex rejects a second active appointment on the same doctor/date/time.
const ActiveSlotIndex = "doctor_date_time_active"

var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Indexes lists every index the services rely on, per collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		util.AppointmentCollection: {
			{
				Keys: bson.D{{Key: "doctor", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
				Options: options.Index().
					SetName(ActiveSlotIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"active": true}),
			},
			{Keys: bson.D{{Key: "patient", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
		},
		util.UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "specialty", Value: 1}}},
		},
		util.HealthRecordCollection: {
			{Keys: bson.D{{Key: "patient", Value: 1}, {Key: "visitDate", Value: -1}}},
			{Keys: bson.D{{Key: "doctor", Value: 1}, {Key: "visitDate", Value: -1}}},
		},
		util.HospitalCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
}

func CreateIndexes(ctx context.Context, database *mongo.Database) error {
	for collection, models := range Indexes() {
		names, err := database.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		log.Info().Str("collection", collection).Strs("indexes", names).Msg("Indexes ensured")
	}
	return nil
}
