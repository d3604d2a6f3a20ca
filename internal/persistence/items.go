package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
)

// InsertItem creates an item row and returns its id.
func InsertItem(q sqlx.Ext, item game.Item) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO items (name, item_type, owner_id, required_skill_id, equipment_slot, bonus_crit_chance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.Type, item.OwnerID, item.RequiredSkillID, item.EquipmentSlot, item.BonusCritChance)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return res.LastInsertId()
}

// ItemByOwner loads an item only if the given user owns it.
func ItemByOwner(q sqlx.Ext, ownerID, itemID int64) (game.Item, error) {
	var item game.Item
	err := sqlx.Get(q, &item, `
		SELECT item_id, name, item_type, owner_id, required_skill_id, equipment_slot, bonus_crit_chance
		FROM items WHERE item_id = ? AND owner_id = ?`, itemID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Item{}, fmt.Errorf("%w: item %d owned by user %d", ErrNotFound, itemID, ownerID)
	}
	if err != nil {
		return game.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// InventoryByOwner lists everything a user owns.
func InventoryByOwner(q sqlx.Ext, ownerID int64) ([]game.Item, error) {
	var items []game.Item
	if err := sqlx.Select(q, &items, `
		SELECT item_id, name, item_type, owner_id, required_skill_id, equipment_slot, bonus_crit_chance
		FROM items WHERE owner_id = ? ORDER BY item_id`, ownerID); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

// ClearSlot vacates an equipment slot. The displaced item stays in the
// owner's inventory; only the slot mapping goes away.
func ClearSlot(q sqlx.Ext, userID int64, slot string) error {
	if _, err := q.Exec(`DELETE FROM user_equipment WHERE user_id = ? AND slot_type = ?`, userID, slot); err != nil {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}

// AssignSlot maps an item into an equipment slot.
func AssignSlot(q sqlx.Ext, userID, itemID int64, slot string) error {
	_, err := q.Exec(`INSERT INTO user_equipment (user_id, slot_type, item_id) VALUES (?, ?, ?)`,
		userID, slot, itemID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slot %s for user %d", ErrDuplicate, slot, userID)
		}
		return fmt.Errorf("assign slot: %w", err)
	}
	return nil
}

// EquippedItems lists a user's slot assignments joined with item details.
func EquippedItems(q sqlx.Ext, userID int64) ([]game.EquippedItem, error) {
	var items []game.EquippedItem
	if err := sqlx.Select(q, &items, `
		SELECT ue.user_id, ue.slot_type, i.item_id, i.name, i.item_type, i.required_skill_id, i.bonus_crit_chance
		FROM user_equipment ue
		JOIN items i ON ue.item_id = i.item_id
		WHERE ue.user_id = ?
		ORDER BY ue.slot_type`, userID); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// EquippedToolBonus returns the critical-chance bonus of the tool in the
// main slot, if its required skill is in the compatible set for the skill
// being used. Zero when nothing qualifies.
func EquippedToolBonus(q sqlx.Ext, userID int64, compatibleSkillIDs []int64) (float64, error) {
	if len(compatibleSkillIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`
		SELECT i.bonus_crit_chance
		FROM user_equipment ue
		JOIN items i ON ue.item_id = i.item_id
		WHERE ue.user_id = ?
		AND ue.slot_type = ?
		AND i.item_type = ?
		AND i.required_skill_id IN (?)
		LIMIT 1`,
		userID, game.SlotToolMain, game.ItemTypeTool, compatibleSkillIDs)
	if err != nil {
		return 0, fmt.Errorf("build tool query: %w", err)
	}

	var bonus float64
	err = sqlx.Get(q, &bonus, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get tool bonus: %w", err)
	}
	return bonus, nil
}
