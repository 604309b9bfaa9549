// Package id mints time-sortable identifiers for cycles and order intents.
package id

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID stamped with the current wall clock.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a ULID stamped with t. Cycles pass their evaluation time so
// journal rows sort the same way the cycles ran. Ids sharing a millisecond
// still sort in the order they were minted.
func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t.UTC()), ulid.DefaultEntropy()).String()
}

// Time extracts the timestamp encoded in a ULID string.
func Time(s string) (time.Time, error) {
	v, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(v.Time()).UTC(), nil
}
