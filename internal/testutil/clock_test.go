package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_AdvancesByStep(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c := NewClock(start, time.Minute)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Minute), c.Now())
	assert.Equal(t, start.Add(2*time.Minute), c.Now())
}

func TestSequentialIDs(t *testing.T) {
	next := SequentialIDs("intent")

	assert.Equal(t, "intent-1", next())
	assert.Equal(t, "intent-2", next())
	assert.Equal(t, "intent-3", next())
}
