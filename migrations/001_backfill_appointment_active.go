package migrations

import (
	"context"
	"fmt"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ActiveBackfill derives the active flag for appointments written without it.
func ActiveBackfill() []bson.M {
	return []bson.M{
		{
			"filter": bson.M{"active": bson.M{"$exists": false}, "status": bson.M{"$in": models.ActiveStatuses}},
			"update": bson.M{"$set": bson.M{"active": true}},
		},
		{
			"filter": bson.M{"active": bson.M{"$exists": false}, "status": bson.M{"$nin": models.ActiveStatuses}},
			"update": bson.M{"$set": bson.M{"active": false}},
		},
	}
}

func BackfillAppointmentActive(ctx context.Context, database *mongo.Database) error {
	coll := database.Collection(util.AppointmentCollection)
	for _, step := range ActiveBackfill() {
		result, err := coll.UpdateMany(ctx, step["filter"], step["update"])
		if err != nil {
			return fmt.Errorf("backfill appointment active: %w", err)
		}
		log.Info().Int64("modified", result.ModifiedCount).Msg("Migration applied: appointment active flag")
	}
	return nil
}
