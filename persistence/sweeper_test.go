package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSweeperAppliesDocumentedDefaults(t *testing.T) {
	s := NewSweeper(nil, 0, 0)
	assert.Equal(t, DefaultRetentionHorizon, s.horizon)
	assert.Equal(t, DefaultSweepInterval, s.interval)
}

func TestNewSweeperHonorsExplicitOverrides(t *testing.T) {
	s := NewSweeper(nil, 30*24*time.Hour, time.Hour)
	assert.Equal(t, 30*24*time.Hour, s.horizon)
	assert.Equal(t, time.Hour, s.interval)
}
