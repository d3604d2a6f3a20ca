package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOrigin(t *testing.T) {
	t.Parallel()

	got := Compute(0)
	assert.Equal(t, Info{Level: 1, XPToNext: 100, XPIntoLevel: 0}, got)
}

func TestComputeFirstLevelBoundary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Compute(99).Level)

	at := Compute(100)
	assert.Equal(t, 2, at.Level)
	assert.Equal(t, int64(0), at.XPIntoLevel)
	// Level 2 costs 100 + 2*25.
	assert.Equal(t, int64(150), at.XPToNext)
}

func TestComputeSecondLevelBoundary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, Compute(249).Level)
	assert.Equal(t, 3, Compute(250).Level)
}

func TestComputeRegimeThresholds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(100+49*25), nextThreshold(49))
	assert.Equal(t, int64(2000), nextThreshold(50))
	assert.Equal(t, int64(2000+149*100), nextThreshold(199))
	assert.Equal(t, int64(10000), nextThreshold(200))
	assert.Equal(t, int64(10000+300*500), nextThreshold(500))
}

func TestComputeMonotonic(t *testing.T) {
	t.Parallel()

	prev := Compute(0)
	for xp := int64(1); xp <= 50_000; xp += 37 {
		cur := Compute(xp)
		require.GreaterOrEqual(t, cur.Level, prev.Level, "level decreased at xp=%d", xp)
		require.GreaterOrEqual(t, cur.Level, 1)
		prev = cur
	}
}

func TestComputeCapSentinel(t *testing.T) {
	t.Parallel()

	// Accumulate exactly enough XP to stand at MaxLevel.
	var total int64 = baseThreshold
	for level := 2; level < MaxLevel; level++ {
		total += nextThreshold(level)
	}

	at := Compute(total)
	require.Equal(t, MaxLevel, at.Level)
	assert.Equal(t, int64(Capped), at.XPToNext)
	assert.Equal(t, int64(0), at.XPIntoLevel)

	// Remaining XP past the cap is still reported.
	past := Compute(total + 123)
	require.GreaterOrEqual(t, past.Level, MaxLevel)
	assert.Equal(t, int64(Capped), past.XPToNext)
}

func TestComputeNegativeInputIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Compute(0), Compute(-5))
}

func TestLevelOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, LevelOf(0))
	assert.Equal(t, 2, LevelOf(100))
	assert.Equal(t, 8, LevelOf(1500))
}
