// Package action resolves a skill use: one d100 roll, classified into a
// base success, critical success, or critical failure, with trait and
// equipped-tool modifiers applied. This is the only place a roll is
// interpreted; the roll itself comes from an injectable dice.Roller.
package action

import "github.com/talgya/aethel/internal/game"

const (
	// BaseXP is the unmodified XP yield of one skill use.
	BaseXP = 50

	critThreshold   = 90
	critFailBelow   = 5
	traitCritAbove  = 80
	baseMultiplier  = 1.0
	critMultiplier  = 2.5
	failMultiplier  = 0.1
	traitMultiplier = 3.0
)

// Outcome is the result of classifying one roll.
type Outcome struct {
	Roll       int     `json:"roll"`
	Multiplier float64 `json:"multiplier"`
	XPGain     int64   `json:"xp_gain"`
	Message    string  `json:"message"`
}

// CriticalFailure reports whether the outcome wastes the action.
// Drops are suppressed on critical failures.
func (o Outcome) CriticalFailure() bool {
	return o.Multiplier <= failMultiplier
}

// Critical reports whether the outcome qualifies for doubled drops.
func (o Outcome) Critical() bool {
	return o.Multiplier >= critMultiplier
}

// Resolve classifies roll (1-100). toolBonus is a fractional critical
// chance boost from an equipped tool: it lowers the critical threshold of
// 90 by toolBonus*100. traitCode is the user's trait modifier code; the
// risk-area trait upgrades any roll above 80 to an enhanced critical,
// never downgrading one that already resolved higher.
func Resolve(roll int, traitCode string, toolBonus float64) Outcome {
	threshold := critThreshold - toolBonus*100

	multiplier := baseMultiplier
	message := "Base success."

	switch {
	case float64(roll) > threshold:
		multiplier = critMultiplier
		message = "Critical success! The quality of your work earns a bonus."
		if toolBonus > 0 && roll <= critThreshold {
			// Only the tool made this roll a critical.
			message = "Critical success! Your equipped tool tipped the odds."
		}
	case roll < critFailBelow:
		multiplier = failMultiplier
		message = "Critical failure! Wasted effort, minimal experience."
	}

	if traitCode == game.TraitCritRiskArea && roll > traitCritAbove {
		if traitMultiplier > multiplier {
			multiplier = traitMultiplier
		}
		message = "Critical success (Bold trait bonus)! Maximum reward."
	}

	return Outcome{
		Roll:       roll,
		Multiplier: multiplier,
		XPGain:     int64(BaseXP * multiplier),
		Message:    message,
	}
}
