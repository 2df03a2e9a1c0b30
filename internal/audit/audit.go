// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ifctrack/ifctrack/internal/differ"
)

// UnknownUser is reported when no user can be determined.
const UnknownUser = "Unknown"

// Attribution says who made a change and when. A zero Timestamp means
// unknown.
type Attribution struct {
	User      string
	Timestamp time.Time
}

// UserAssigner attributes changes.
type UserAssigner interface {
	Assign(c differ.Change) Attribution
}

// DefaultUsers are the placeholder team members used by RandomAssigner.
var DefaultUsers = []string{"AmiraElSaeed", "MohamedAttay", "AleynaKircali"}

// Default placeholder date range.
var (
	DefaultFrom = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	DefaultTo   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
)

// RandomAssigner picks a user and instant at random. It stands in for a real
// audit trail and is deterministic for a given source.
type RandomAssigner struct {
	Users []string
	From  time.Time
	To    time.Time

	rng *rand.Rand
}

// NewRandomAssigner returns an assigner drawing from rng. Empty users or a
// zero range fall back to the defaults; a nil rng is seeded from the clock.
func NewRandomAssigner(rng *rand.Rand, users []string, from, to time.Time) (*RandomAssigner, error) {
	if len(users) == 0 {
		users = DefaultUsers
	}
	if from.IsZero() && to.IsZero() {
		from, to = DefaultFrom, DefaultTo
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date range end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}
	if rng == nil {
		rng = NewSeeded(uint64(time.Now().UnixNano()))
	}
	return &RandomAssigner{Users: users, From: from, To: to, rng: rng}, nil
}

// NewSeeded returns a source for RandomAssigner. The same seed yields the
// same assignments.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Assign draws a whole number of days within the range plus up to one day of
// seconds, so the instant may fall on the day after To.
func (a *RandomAssigner) Assign(differ.Change) Attribution {
	user := a.Users[a.rng.IntN(len(a.Users))]
	days := int(a.To.Sub(a.From).Hours() / 24)
	offset := time.Duration(a.rng.IntN(days+1))*24*time.Hour +
		time.Duration(a.rng.IntN(86400+1))*time.Second
	return Attribution{User: user, Timestamp: a.From.Add(offset)}
}

// HistoryAssigner reads IfcOwnerHistory. Added and modified changes use the
// new entity; deleted changes use the old one.
type HistoryAssigner struct{}

// Assign returns the last modifying user and time, falling back to the owner
// and creation time, then to UnknownUser and a zero time.
func (HistoryAssigner) Assign(c differ.Change) Attribution {
	out := Attribution{User: UnknownUser}
	if c.Entity == nil {
		return out
	}
	h, ok := c.Entity.OwnerHistory()
	if !ok {
		return out
	}
	if u := h.User(); u != "" {
		out.User = u
	}
	out.Timestamp = h.When()
	return out
}
