package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard/config"
)

func TestNewDefaultRegistryRegistersElevenCheckers(t *testing.T) {
	r := NewDefaultRegistry(NewErrorRateTracker(10))
	rc := &config.RuntimeConfig{Checkers: map[string]config.CheckerConfig{}}
	enabled := r.Enabled(rc)
	assert.Len(t, enabled, 11)
}

func TestRegistryEnabledRespectsOverride(t *testing.T) {
	r := NewDefaultRegistry(nil)
	rc := &config.RuntimeConfig{
		Checkers: map[string]config.CheckerConfig{
			"NoWhereClause": {Enabled: false},
		},
	}
	for _, c := range r.Enabled(rc) {
		assert.NotEqual(t, "NoWhereClause", c.CheckerID())
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewDefaultRegistry(nil)
	c, ok := r.Get("DummyCondition")
	require.True(t, ok)
	assert.Equal(t, "DummyCondition", c.CheckerID())

	_, ok = r.Get("NoSuchChecker")
	assert.False(t, ok)
}
