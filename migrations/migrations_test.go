package migrations

import (
	"testing"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestActiveSlotIndexIsPartialAndUnique(t *testing.T) {
	appointments := Indexes()[util.AppointmentCollection]
	require.NotEmpty(t, appointments)

	slot := appointments[0]
	require.NotNil(t, slot.Options)
	assert.Equal(t, ActiveSlotIndex, *slot.Options.Name)
	assert.True(t, *slot.Options.Unique)
	assert.Equal(t, bson.M{"active": true}, slot.Options.PartialFilterExpression)

	keys := slot.Keys.(bson.D)
	assert.Equal(t, []string{"doctor", "date", "time"}, []string{keys[0].Key, keys[1].Key, keys[2].Key})
}

func TestUniqueIndexes(t *testing.T) {
	unique := func(collection, field string) bool {
		for _, m := range Indexes()[collection] {
			keys := m.Keys.(bson.D)
			if len(keys) == 1 && keys[0].Key == field && m.Options != nil && m.Options.Unique != nil {
				return *m.Options.Unique
			}
		}
		return false
	}
	assert.True(t, unique(util.UserCollection, "email"))
	assert.True(t, unique(util.HospitalCollection, "name"))
	assert.True(t, unique(util.HospitalCollection, "slug"))
	assert.False(t, unique(util.HealthRecordCollection, "patient"))
}

func TestActiveBackfillCoversEveryStatus(t *testing.T) {
	steps := ActiveBackfill()
	require.Len(t, steps, 2)

	activeFilter := steps[0]["filter"].(bson.M)
	assert.Equal(t, bson.M{"$in": models.ActiveStatuses}, activeFilter["status"])
	assert.Equal(t, bson.M{"$set": bson.M{"active": true}}, steps[0]["update"])

	inactiveFilter := steps[1]["filter"].(bson.M)
	assert.Equal(t, bson.M{"$nin": models.ActiveStatuses}, inactiveFilter["status"])
	assert.Equal(t, bson.M{"$set": bson.M{"active": false}}, steps[1]["update"])
}
