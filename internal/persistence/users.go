package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
)

// InsertUser creates a user row. Returns ErrDuplicate when the username is
// already taken.
func InsertUser(q sqlx.Ext, username string, now int64) (int64, error) {
	res, err := q.Exec(`INSERT INTO users (username, created_at) VALUES (?, ?)`, username, now)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: username %q", ErrDuplicate, username)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// UserByID loads one user.
func UserByID(q sqlx.Ext, id int64) (game.User, error) {
	var u game.User
	err := sqlx.Get(q, &u, `SELECT user_id, username, is_admin, created_at FROM users WHERE user_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.User{}, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return game.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UserByUsername loads one user by unique username.
func UserByUsername(q sqlx.Ext, username string) (game.User, error) {
	var u game.User
	err := sqlx.Get(q, &u, `SELECT user_id, username, is_admin, created_at FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return game.User{}, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	if err != nil {
		return game.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// AllUsers lists every user, oldest first.
func AllUsers(q sqlx.Ext) ([]game.User, error) {
	var users []game.User
	if err := sqlx.Select(q, &users, `SELECT user_id, username, is_admin, created_at FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user; dependent rows cascade. Returns ErrNotFound
// when no such user exists.
func DeleteUser(q sqlx.Ext, id int64) error {
	res, err := q.Exec(`DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

// SetUserAdmin toggles the administrator flag.
func SetUserAdmin(q sqlx.Ext, id int64, admin bool) error {
	res, err := q.Exec(`UPDATE users SET is_admin = ? WHERE user_id = ?`, admin, id)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

// AllTraits lists the trait catalog.
func AllTraits(q sqlx.Ext) ([]game.Trait, error) {
	var traits []game.Trait
	if err := sqlx.Select(q, &traits, `SELECT trait_id, name, description, code_modifier FROM traits ORDER BY trait_id`); err != nil {
		return nil, fmt.Errorf("list traits: %w", err)
	}
	return traits, nil
}

// InsertUserTrait assigns a trait to a user. The user_traits primary key
// keeps the assignment unique; a second insert returns ErrDuplicate.
func InsertUserTrait(q sqlx.Ext, userID, traitID int64) error {
	_, err := q.Exec(`INSERT INTO user_traits (user_id, trait_id) VALUES (?, ?)`, userID, traitID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: trait for user %d", ErrDuplicate, userID)
		}
		return fmt.Errorf("insert user trait: %w", err)
	}
	return nil
}

// UserTrait loads a user's assigned trait, or nil when none is assigned.
func UserTrait(q sqlx.Ext, userID int64) (*game.Trait, error) {
	var t game.Trait
	err := sqlx.Get(q, &t, `
		SELECT t.trait_id, t.name, t.description, t.code_modifier
		FROM user_traits ut
		JOIN traits t ON ut.trait_id = t.trait_id
		WHERE ut.user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user trait: %w", err)
	}
	return &t, nil
}
