package engine

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethel/internal/dice"
	"github.com/talgya/aethel/internal/game"
	"github.com/talgya/aethel/internal/persistence"
)

// newTestEngine opens a throwaway seeded database and pins both randomness
// seams: rolls come from the given sequence, and catalog picks walk a
// round-robin counter instead of the PRNG.
func newTestEngine(t *testing.T, rolls ...int) *Engine {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedCatalog())

	e := New(db, dice.NewSequence(rolls...))
	var n int
	e.pick = func(size int) int {
		n++
		return n % size
	}
	return e
}

func mustCreateUser(t *testing.T, e *Engine, username string) int64 {
	t.Helper()
	id, err := e.CreateUser(username)
	require.NoError(t, err)
	return id
}

func makeAdmin(t *testing.T, e *Engine, userID int64) {
	t.Helper()
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		return persistence.SetUserAdmin(tx, userID, true)
	})
	require.NoError(t, err)
}

// setSkillXP pins a user's progress row, bypassing the action path.
func setSkillXP(t *testing.T, e *Engine, userID int64, skillName string, xp int64, level int) {
	t.Helper()
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		rec, err := persistence.SkillRecordByName(tx, userID, skillName)
		if err != nil {
			return err
		}
		return persistence.UpdateSkillRecord(tx, rec.ID, xp, level)
	})
	require.NoError(t, err)
}

func skillRecord(t *testing.T, e *Engine, userID int64, skillName string) game.SkillRecord {
	t.Helper()
	var rec game.SkillRecord
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		rec, err = persistence.SkillRecordByName(tx, userID, skillName)
		return err
	})
	require.NoError(t, err)
	return rec
}

// setTrait overwrites the randomly assigned creation trait so tests can
// exercise a specific modifier code.
func setTrait(t *testing.T, e *Engine, userID, traitID int64) {
	t.Helper()
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`UPDATE user_traits SET trait_id = ? WHERE user_id = ?`, traitID, userID)
		return err
	})
	require.NoError(t, err)
}

// grantResource credits a balance directly, bypassing the drop path.
func grantResource(t *testing.T, e *Engine, userID, resourceID, quantity int64) {
	t.Helper()
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		return persistence.AddResourceQuantity(tx, userID, resourceID, quantity)
	})
	require.NoError(t, err)
}

func resourceQuantity(t *testing.T, e *Engine, userID, resourceID int64) int64 {
	t.Helper()
	var qty int64
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		qty, err = persistence.ResourceQuantity(tx, userID, resourceID)
		return err
	})
	require.NoError(t, err)
	return qty
}

// giveItem creates an owned item directly, bypassing the crafting path.
func giveItem(t *testing.T, e *Engine, item game.Item) int64 {
	t.Helper()
	var id int64
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		id, err = persistence.InsertItem(tx, item)
		return err
	})
	require.NoError(t, err)
	return id
}
