package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32(v uint32) *uint32 { return &v }

func TestPercentUndefinedWithoutTotal(t *testing.T) {
	p := Progress{Current: 5}
	_, ok := p.Percent()
	assert.False(t, ok, "percent must be undefined, not zero")
}

func TestPercentZeroTotal(t *testing.T) {
	p := Progress{Current: 5, Total: u32(0)}
	pct, ok := p.Percent()
	require.True(t, ok)
	assert.Equal(t, 0.0, pct)
}

func TestPercentExact(t *testing.T) {
	p := Progress{Current: 5, Total: u32(25)}
	pct, ok := p.Percent()
	require.True(t, ok)
	assert.Equal(t, 20.0, pct)
}

func TestPercentOverHundredNotClamped(t *testing.T) {
	// reading past the listed total (extra chapters, recounts) is allowed
	// and the percentage is reported as-is
	p := Progress{Current: 30, Total: u32(25)}
	pct, ok := p.Percent()
	require.True(t, ok)
	assert.Equal(t, 120.0, pct)
}

func TestIsFinished(t *testing.T) {
	assert.False(t, Progress{Current: 5}.IsFinished())
	assert.False(t, Progress{Current: 5, Total: u32(0)}.IsFinished())
	assert.False(t, Progress{Current: 4, Total: u32(5)}.IsFinished())
	assert.True(t, Progress{Current: 5, Total: u32(5)}.IsFinished())
	assert.True(t, Progress{Current: 9, Total: u32(5)}.IsFinished())
}

func TestForceCompletePinsMissingTotal(t *testing.T) {
	p := Progress{Current: 3}
	p.ForceComplete()
	require.NotNil(t, p.Total)
	assert.Equal(t, uint32(3), *p.Total)
	assert.Equal(t, uint32(3), p.Current)
	assert.True(t, p.IsFinished())
}

func TestForceCompleteIdempotent(t *testing.T) {
	p := Progress{Current: 7, Total: u32(12)}
	p.ForceComplete()
	once := p
	p.ForceComplete()
	assert.Equal(t, once, p)
	assert.Equal(t, uint32(12), p.Current)
	assert.True(t, p.IsFinished())
}
