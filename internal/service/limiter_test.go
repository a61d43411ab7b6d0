package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUsageLimiterAllowsUpToLimit(t *testing.T) {
	l := NewUsageLimiter(3)

	assert.True(t, l.Allow("s1"))
	assert.True(t, l.Allow("s1"))
	assert.True(t, l.Allow("s1"))
	assert.False(t, l.Allow("s1"))
}

func TestUsageLimiterSessionsAreIndependent(t *testing.T) {
	l := NewUsageLimiter(1)

	assert.True(t, l.Allow("s1"))
	assert.False(t, l.Allow("s1"))
	assert.True(t, l.Allow("s2"))
}

func TestUsageLimiterResetsNextDay(t *testing.T) {
	l := NewUsageLimiter(1)
	now := time.Date(2024, 11, 1, 23, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	assert.True(t, l.Allow("s1"))
	assert.False(t, l.Allow("s1"))

	now = now.Add(2 * time.Hour)
	assert.True(t, l.Allow("s1"))
}

func TestUsageLimiterEmptySessionSharesBucket(t *testing.T) {
	l := NewUsageLimiter(2)

	assert.True(t, l.Allow(""))
	assert.True(t, l.Allow(""))
	assert.False(t, l.Allow(""))
}
