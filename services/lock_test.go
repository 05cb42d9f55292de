package services

import (
	"context"
	"sync"
	"testing"
	"time"

	cache "github.com/Aman-ydav/CareSync-sub000/config/redis"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerTimesOutWhileHeld(t *testing.T) {
	locker := NewLocalLocker(30 * time.Millisecond)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "slot")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "slot")
	assert.ErrorIs(t, err, cache.ErrLockNotAcquired)

	other, err := locker.Lock(ctx, "other-slot")
	require.NoError(t, err)
	other()

	unlock()
	again, err := locker.Lock(ctx, "slot")
	require.NoError(t, err)
	again()
	assert.Empty(t, locker.slots)
}

func TestLocalLockerHonoursContext(t *testing.T) {
	locker := NewLocalLocker(time.Minute)
	unlock, err := locker.Lock(context.Background(), "slot")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locker.Lock(ctx, "slot")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSlotLockKey(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "slot-lock:d1:2026-03-10:09:30", slotLockKey("d1", day, "09:30"))
}

func TestRedisBackedBookingHasOneWinner(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture()
	svc := newAppointmentService(f, WithAppointmentCache(cache.New(rdb, time.Minute)))
	svc.locker = cache.NewLocker(rdb, time.Second, time.Second)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, f.admin, booking(f, "09:30"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, util.IsKind(err, util.KindConflict))
	}
	assert.Equal(t, 1, wins)
	assert.Empty(t, mr.Keys())
}
