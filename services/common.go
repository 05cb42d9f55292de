package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("caresync/services")

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan marks the span failed for internal errors only; rejections are expected outcomes.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("error.kind", string(util.KindOf(err))))
		if util.KindOf(err) == util.KindInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

/*
* Missing documents become NotFound with the given message
* Anything else is logged and hidden behind an internal error
 */
func storeError(op string, err error, notFound string) error {
	if errors.Is(err, util.ErrNoDocument) {
		return util.NotFound(notFound)
	}
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return err
	}
	log.Error().Err(err).Msg("Error from " + op)
	return util.Internal(err)
}

func cacheGet(ctx context.Context, c Cache, key string, dest any) bool {
	if c == nil {
		return false
	}
	found, err := c.GetCache(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error while reading cache")
		return false
	}
	return found
}

/*
* Serve key from the cache when present
* Otherwise lease the key before reading the store
* A write landing in between revokes the lease and the fill is dropped
 */
func cacheThrough[T any](ctx context.Context, c Cache, key string, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	var cached T
	if cacheGet(ctx, c, key, &cached) {
		return &cached, nil
	}
	token, err := c.LeaseCache(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error while leasing cache key")
	}
	value, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		if _, err := c.FillCache(ctx, key, token, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Error while caching")
		}
	}
	return value, nil
}

// cacheInvalidate runs after every committed write.
func cacheInvalidate(ctx context.Context, c Cache, key string) {
	if c == nil {
		return
	}
	if err := c.DeleteCache(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Error while deleting from cache")
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func requireField(value, message string) error {
	if trimmed(value) == "" {
		return util.Validation(message)
	}
	return nil
}
