package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowTracksSystemClockByDefault(t *testing.T) {
	c := New()
	now := time.Now().Unix()
	got := c.Now()
	assert.InDelta(t, now, got, 1)
	assert.Zero(t, c.Offset())
}

func TestNowAppliesOffset(t *testing.T) {
	c := New()
	c.setOffset(-2 * time.Hour)

	expected := time.Now().Add(-2 * time.Hour).Unix()
	assert.InDelta(t, expected, c.Now(), 1)
	assert.Equal(t, -2*time.Hour, c.Offset())
}
