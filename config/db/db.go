package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

/*
* Dial the cluster with the configured URI
* Ping the primary so a bad URI fails at startup
* Return the client and the selected database
 */
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info().Str("database", database).Msg("Connected to MongoDB")
	return client, client.Database(database), nil
}

func Disconnect(ctx context.Context, client *mongo.Client) {
	if client == nil {
		return
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Error while disconnecting from MongoDB")
	}
}

// Translate maps driver errors onto the sentinels the services understand.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return util.ErrNoDocument
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", util.ErrDuplicateKey, err)
	default:
		return err
	}
}

func FindOne(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOneOptions) error {
	return Translate(coll.FindOne(ctx, filter, opts...).Decode(out))
}

// FindAll decodes every match into out, which must be a pointer to a slice.
func FindAll(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOptions) error {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func CreateOne(ctx context.Context, coll *mongo.Collection, doc any) (*mongo.InsertOneResult, error) {
	res, err := coll.InsertOne(ctx, doc)
	return res, Translate(err)
}

func UpdateOne(ctx context.Context, coll *mongo.Collection, filter, update any) (*mongo.UpdateResult, error) {
	res, err := coll.UpdateOne(ctx, filter, update)
	return res, Translate(err)
}

func ReplaceOne(ctx context.Context, coll *mongo.Collection, filter, doc any) error {
	res, err := coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return Translate(err)
	}
	if res.MatchedCount == 0 {
		return util.ErrNoDocument
	}
	return nil
}

// FindOneAndUpdate applies update to the first match and decodes the document as it is afterwards.
func FindOneAndUpdate(ctx context.Context, coll *mongo.Collection, filter, update any, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return Translate(coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out))
}

func Count(ctx context.Context, coll *mongo.Collection, filter any) (int64, error) {
	return coll.CountDocuments(ctx, filter)
}
