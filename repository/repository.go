package repository

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/config/db"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements every service store on a single database.
type Mongo struct {
	database *mongo.Database
}

func New(database *mongo.Database) *Mongo {
	return &Mongo{database: database}
}

func (m *Mongo) collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// objectID parses a hex id; malformed ids are a validation error rather than a miss.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, util.Validation(util.INVALID_ID)
	}
	return oid, nil
}

func byID(id string) (bson.M, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": oid}, nil
}

// excluding adds an _id $ne clause when excludeID is a valid id.
func excluding(filter bson.M, excludeID string) bson.M {
	if excludeID == "" {
		return filter
	}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}
	return filter
}

// versioned matches id while the stored version is still version.
// Documents written before versioning have no field and count as version 0.
func versioned(id primitive.ObjectID, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": id, "version": bson.M{"$in": bson.A{int64(0), nil}}}
	}
	return bson.M{"_id": id, "version": version}
}

/*
* Bump the version on the outgoing document
* Replace only the copy the caller read
* Roll the version back when nothing matched
 */
func replaceVersioned(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, version *int64, doc any) error {
	seen := *version
	*version = seen + 1
	if err := db.ReplaceOne(ctx, coll, versioned(id, seen), doc); err != nil {
		*version = seen
		return err
	}
	return nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	filter, err := byID(id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := db.FindOne(ctx, coll, filter, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

/*
* Count the matches for the page header
* Fetch one page in the given order
 */
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, page, limit int64) ([]T, int64, error) {
	_, limit, skip := util.Pagination(page, limit)
	total, err := db.Count(ctx, coll, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(sort).SetSkip(skip).SetLimit(limit)
	items := []T{}
	if err := db.FindAll(ctx, coll, filter, &items, opts); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D) ([]T, error) {
	items := []T{}
	if err := db.FindAll(ctx, coll, filter, &items, options.Find().SetSort(sort)); err != nil {
		return nil, err
	}
	return items, nil
}

// countBy groups a collection on field and counts each value.
func countBy(ctx context.Context, coll *mongo.Collection, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Value string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Value] = row.Count
	}
	return out, nil
}
