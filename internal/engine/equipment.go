package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
	"github.com/talgya/aethel/internal/persistence"
)

// EquipItem places an owned item into its equipment slot, displacing any
// current occupant back to the inventory. Items without a slot cannot be
// equipped; items bound to a skill require the user to hold a record in
// that skill.
func (e *Engine) EquipItem(userID, itemID int64) (*game.Item, error) {
	var item game.Item
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, userID); err != nil {
			return notFound(err)
		}
		var err error
		item, err = persistence.ItemByOwner(tx, userID, itemID)
		if err != nil {
			return notFound(err)
		}
		if item.EquipmentSlot == nil {
			return fmt.Errorf("%w: item %q cannot be equipped", ErrInvalidOperation, item.Name)
		}
		if item.RequiredSkillID != nil {
			_, err := persistence.SkillRecordBySkillID(tx, userID, *item.RequiredSkillID)
			if errors.Is(err, persistence.ErrNotFound) {
				return fmt.Errorf("%w: item %q requires a skill the user lacks", ErrForbidden, item.Name)
			}
			if err != nil {
				return err
			}
		}

		if err := persistence.ClearSlot(tx, userID, *item.EquipmentSlot); err != nil {
			return err
		}
		return persistence.AssignSlot(tx, userID, itemID, *item.EquipmentSlot)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item equipped", "user_id", userID, "item_id", itemID, "slot", *item.EquipmentSlot)
	return &item, nil
}

// GetInventory lists everything a user owns.
func (e *Engine) GetInventory(userID int64) ([]game.Item, error) {
	var items []game.Item
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, userID); err != nil {
			return notFound(err)
		}
		var err error
		items, err = persistence.InventoryByOwner(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetEquipped lists a user's slot assignments.
func (e *Engine) GetEquipped(userID int64) ([]game.EquippedItem, error) {
	var items []game.EquippedItem
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, userID); err != nil {
			return notFound(err)
		}
		var err error
		items, err = persistence.EquippedItems(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
