package util

import (
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var dateLayouts = []string{DateLayout, time.RFC3339, "02-01-2006"}

/*
* Accept YYYY-MM-DD, RFC3339 or DD-MM-YYYY
* Keep the calendar day the caller wrote
* Strip the time of day and return UTC midnight
 */
func NormalizeDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, Validation(DATE_REQUIRED)
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return StartOfDay(t), nil
		}
	}
	return time.Time{}, Validation(INVALID_DATE)
}

// StartOfDay returns midnight UTC of the calendar day t falls on in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseClock parses a strict "HH:MM" token into minutes after midnight.
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, Validation(INVALID_TIME)
	}
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, Validation(INVALID_TIME)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(ClockLayout)
}

// ClockNumber drops the colon from an "HH:MM" token so times compare as integers, "09:30" -> 930.
func ClockNumber(value string) (int, error) {
	if _, err := ParseClock(value); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.Replace(value, ":", "", 1))
}
