package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
)

// DropResourceForSkill returns the resource a skill use drops, or
// ErrNotFound when the skill yields nothing. The catalog convention is at
// most one resource per skill; if the data maps several, the lowest
// resource id wins deterministically.
func DropResourceForSkill(q sqlx.Ext, skillID int64) (game.Resource, error) {
	var r game.Resource
	err := sqlx.Get(q, &r, `
		SELECT resource_id, name, base_resource_type, skill_id
		FROM resources WHERE skill_id = ?
		ORDER BY resource_id LIMIT 1`, skillID)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Resource{}, fmt.Errorf("%w: drop resource for skill %d", ErrNotFound, skillID)
	}
	if err != nil {
		return game.Resource{}, fmt.Errorf("get drop resource: %w", err)
	}
	return r, nil
}

// ResourceByID loads one catalog resource.
func ResourceByID(q sqlx.Ext, id int64) (game.Resource, error) {
	var r game.Resource
	err := sqlx.Get(q, &r, `
		SELECT resource_id, name, base_resource_type, skill_id
		FROM resources WHERE resource_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Resource{}, fmt.Errorf("%w: resource %d", ErrNotFound, id)
	}
	if err != nil {
		return game.Resource{}, fmt.Errorf("get resource: %w", err)
	}
	return r, nil
}

// AddResourceQuantity adjusts a user's balance by delta. Positive deltas
// upsert; negative deltas are a guarded decrement — the balance check and
// the write are one conditional UPDATE, so concurrent spends cannot drive
// a balance negative. Returns ErrInsufficient when the decrement would
// underflow (or no balance row exists); the balance is left untouched.
func AddResourceQuantity(q sqlx.Ext, userID, resourceID, delta int64) error {
	if delta == 0 {
		return nil
	}

	if delta > 0 {
		_, err := q.Exec(`
			INSERT INTO user_resources (user_id, resource_id, quantity)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, resource_id)
			DO UPDATE SET quantity = quantity + excluded.quantity`,
			userID, resourceID, delta)
		if err != nil {
			return fmt.Errorf("add resources: %w", err)
		}
		return nil
	}

	need := -delta
	res, err := q.Exec(`
		UPDATE user_resources SET quantity = quantity - ?
		WHERE user_id = ? AND resource_id = ? AND quantity >= ?`,
		need, userID, resourceID, need)
	if err != nil {
		return fmt.Errorf("spend resources: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("spend resources: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: resource %d for user %d", ErrInsufficient, resourceID, userID)
	}
	return nil
}

// ResourceQuantity reads one balance; zero when no row exists.
func ResourceQuantity(q sqlx.Ext, userID, resourceID int64) (int64, error) {
	var qty int64
	err := sqlx.Get(q, &qty, `
		SELECT quantity FROM user_resources WHERE user_id = ? AND resource_id = ?`,
		userID, resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return qty, nil
}

// UserResources lists a user's positive balances.
func UserResources(q sqlx.Ext, userID int64) ([]game.ResourceBalance, error) {
	var balances []game.ResourceBalance
	if err := sqlx.Select(q, &balances, `
		SELECT ur.user_id, ur.resource_id, r.name, r.base_resource_type, ur.quantity
		FROM user_resources ur
		JOIN resources r ON ur.resource_id = r.resource_id
		WHERE ur.user_id = ? AND ur.quantity > 0
		ORDER BY r.name`, userID); err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return balances, nil
}
