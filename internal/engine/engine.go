// Package engine implements the progression and economy operations: user
// provisioning, the skill-use ledger with resource drops, the contract
// escrow state machine and its availability filter, equipment, and
// crafting. Every operation runs inside one storage transaction; any
// mid-operation failure rolls the whole thing back.
package engine

import (
	"math/rand/v2"
	"time"

	"github.com/talgya/aethel/internal/dice"
	"github.com/talgya/aethel/internal/persistence"
)

// Engine holds the storage handle and the roll source. Components take
// their dependencies explicitly; there is no package-level state.
type Engine struct {
	db     *persistence.DB
	roller dice.Roller

	// pick chooses a uniform index in [0, n); overridable in tests of
	// creation-time randomness (bonus skills, trait assignment).
	pick func(n int) int
}

// New creates an engine over the given storage and roll source.
func New(db *persistence.DB, roller dice.Roller) *Engine {
	return &Engine{
		db:     db,
		roller: roller,
		pick:   rand.IntN,
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
