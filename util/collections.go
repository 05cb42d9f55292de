package util

import "math"

const (
	UserCollection         = "users"
	AppointmentCollection  = "appointments"
	HealthRecordCollection = "healthRecords"
	HospitalCollection     = "hospitals"
)

const (
	AppointmentKey  = "appointment:"
	HealthRecordKey = "healthRecord:"
	UserKey         = "user:"
	SlotLockKey     = "slot-lock:"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 10
	MaxLimit     int64 = 100
)

// Pagination clamps page and limit to sane bounds and returns the skip offset.
func Pagination(page, limit int64) (int64, int64, int64) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > maxPage(limit) {
		page = maxPage(limit)
	}
	return page, limit, (page - 1) * limit
}

// maxPage is the last page whose offset still fits in an int64.
func maxPage(limit int64) int64 {
	return math.MaxInt64/limit + 1
}

// PageBounds is Pagination for request input: out of range pages are rejected instead of clamped.
func PageBounds(page, limit int64) (int64, int64, error) {
	clampedPage, clampedLimit, _ := Pagination(page, limit)
	if page > clampedPage {
		return 0, 0, Validation(PAGE_OUT_OF_RANGE)
	}
	return clampedPage, clampedLimit, nil
}
