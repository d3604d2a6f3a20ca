package engine

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethel/internal/game"
)

func toolItem(ownerID int64, name string, skillID int64) game.Item {
	slot := game.SlotToolMain
	return game.Item{
		Name:            name,
		Type:            game.ItemTypeTool,
		OwnerID:         &ownerID,
		RequiredSkillID: &skillID,
		EquipmentSlot:   &slot,
		BonusCritChance: 0.05,
	}
}

func TestEquipItemDisplacesSlotOccupant(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")

	axeID := giveItem(t, e, toolItem(userID, "Woodcutter's Axe", 6))
	pickID := giveItem(t, e, toolItem(userID, "Quarry Pick", 3))

	_, err := e.EquipItem(userID, axeID)
	require.NoError(t, err)

	equipped, err := e.GetEquipped(userID)
	require.NoError(t, err)
	require.Len(t, equipped, 1)
	assert.Equal(t, axeID, equipped[0].ItemID)
	assert.Equal(t, game.SlotToolMain, equipped[0].SlotType)

	// Equipping into an occupied slot swaps; the axe goes back to the bag.
	_, err = e.EquipItem(userID, pickID)
	require.NoError(t, err)

	equipped, err = e.GetEquipped(userID)
	require.NoError(t, err)
	require.Len(t, equipped, 1)
	assert.Equal(t, pickID, equipped[0].ItemID)

	inventory, err := e.GetInventory(userID)
	require.NoError(t, err)
	assert.Len(t, inventory, 2, "displaced items stay owned")
}

func TestEquipItemRejections(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	owner := mustCreateUser(t, e, "owner")
	thief := mustCreateUser(t, e, "thief")

	axeID := giveItem(t, e, toolItem(owner, "Woodcutter's Axe", 6))
	_, err := e.EquipItem(thief, axeID)
	require.ErrorIs(t, err, ErrNotFound)

	plankID := giveItem(t, e, game.Item{
		Name:    "Wooden Plank",
		Type:    game.ItemTypeMaterial,
		OwnerID: &owner,
	})
	_, err = e.EquipItem(owner, plankID)
	require.ErrorIs(t, err, ErrInvalidOperation)

	// Strip the owner's Commerce record so its ledger requirement fails.
	err = e.db.WithTx(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(`DELETE FROM user_skills WHERE user_id = ? AND skill_id = 5`, owner)
		return err
	})
	require.NoError(t, err)

	ledgerID := giveItem(t, e, toolItem(owner, "Merchant's Ledger", 5))
	_, err = e.EquipItem(owner, ledgerID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = e.EquipItem(404, axeID)
	require.ErrorIs(t, err, ErrNotFound)
}
