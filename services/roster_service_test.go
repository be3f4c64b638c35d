package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRosterDelta(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	added, removed := RosterDelta([]uuid.UUID{a, b, c}, []uuid.UUID{b, c, d})
	assert.Equal(t, []uuid.UUID{d}, added)
	assert.Equal(t, []uuid.UUID{a}, removed)
}

func TestRosterDelta_NoChange(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	added, removed := RosterDelta([]uuid.UUID{a, b}, []uuid.UUID{b, a})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestRosterDelta_EmptySides(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	added, removed := RosterDelta(nil, []uuid.UUID{a, b})
	assert.Equal(t, []uuid.UUID{a, b}, added)
	assert.Empty(t, removed)

	added, removed = RosterDelta([]uuid.UUID{a, b}, nil)
	assert.Empty(t, added)
	assert.Equal(t, []uuid.UUID{a, b}, removed)
}
