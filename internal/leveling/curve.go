// Package leveling implements the experience curve: a pure mapping from
// cumulative XP to level, XP into the current level, and XP to the next.
package leveling

// MaxLevel blocks further progression. At or beyond it, XPToNext reports
// the Capped sentinel.
const MaxLevel = 1000

// Capped is the XPToNext sentinel for records at MaxLevel or above.
const Capped = -1

const baseThreshold = 100

// Info describes a position on the curve.
type Info struct {
	Level       int   `json:"level"`
	XPToNext    int64 `json:"xp_to_next"`
	XPIntoLevel int64 `json:"xp_into_level"`
}

// Compute maps cumulative XP to curve position. Deterministic and total:
// negative input is treated as zero.
func Compute(totalXP int64) Info {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	threshold := int64(baseThreshold)
	remaining := totalXP

	for remaining >= threshold {
		remaining -= threshold
		level++
		threshold = nextThreshold(level)
	}

	if level >= MaxLevel {
		threshold = Capped
	}

	return Info{
		Level:       level,
		XPToNext:    threshold,
		XPIntoLevel: remaining,
	}
}

// LevelOf is a shorthand for Compute(totalXP).Level.
func LevelOf(totalXP int64) int {
	return Compute(totalXP).Level
}

// nextThreshold is the XP needed to leave the given level. The curve
// steepens in three regimes: early levels, the long middle, and mastery.
func nextThreshold(level int) int64 {
	switch {
	case level < 50:
		return int64(100 + level*25)
	case level < 200:
		return int64(2000 + (level-50)*100)
	default:
		return int64(10000 + (level-200)*500)
	}
}
