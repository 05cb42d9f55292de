package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/util"

	cache "github.com/Aman-ydav/CareSync-sub000/config/redis"
)

// LocalLocker is the in-process SlotLocker used when Redis is disabled.
// It only serialises requests inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slotMutex
	wait  time.Duration
}

type slotMutex struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slotMutex), wait: wait}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.slots[key]
	if !ok {
		m = &slotMutex{ch: make(chan struct{}, 1)}
		l.slots[key] = m
	}
	m.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case m.ch <- struct{}{}:
		return func() {
			<-m.ch
			l.drop(key, m)
		}, nil
	case <-timer.C:
		l.drop(key, m)
		return nil, cache.ErrLockNotAcquired
	case <-ctx.Done():
		l.drop(key, m)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) drop(key string, m *slotMutex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m.refs--
	if m.refs == 0 {
		delete(l.slots, key)
	}
}

func slotLockKey(doctorID string, day time.Time, clock string) string {
	return util.SlotLockKey + doctorID + ":" + day.Format(util.DateLayout) + ":" + clock
}

// lockSlot maps lock failures onto API errors.
func lockSlot(ctx context.Context, locker SlotLocker, key string) (func(), error) {
	unlock, err := locker.Lock(ctx, key)
	switch {
	case err == nil:
		return unlock, nil
	case errors.Is(err, cache.ErrLockNotAcquired):
		return nil, util.Conflict(util.SLOT_LOCKED)
	default:
		return nil, util.Internal(err)
	}
}
