// Package persistence provides SQLite-backed storage for the progression
// and economy engine. Every engine operation runs inside one transaction
// via WithTx; query helpers are package-level functions over sqlx.Ext so
// they compose inside or outside a transaction.
package persistence

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Storage sentinels. Engine code maps these onto its user-facing error kinds.
var (
	// ErrNotFound indicates a row lookup matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate")
	// ErrInsufficient indicates a guarded decrement would have gone negative.
	ErrInsufficient = errors.New("insufficient quantity")
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the SQLite database at the given path and applies
// the schema. _txlock=immediate makes every transaction take the write
// lock up front, so racing writers queue on the busy timeout instead of
// failing mid-transaction with SQLITE_BUSY.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite",
		path+"?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// WithTx runs fn inside a transaction. Any error from fn rolls the whole
// transaction back; this is the engine's atomicity boundary.
func (db *DB) WithTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS skills (
		skill_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		base_class TEXT NOT NULL,
		description TEXT,
		max_level INTEGER NOT NULL DEFAULT 1000,
		parent_skill_id INTEGER REFERENCES skills(skill_id)
	);

	CREATE TABLE IF NOT EXISTS traits (
		trait_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		code_modifier TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_traits (
		user_id INTEGER PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
		trait_id INTEGER NOT NULL REFERENCES traits(trait_id)
	);

	CREATE TABLE IF NOT EXISTS user_skills (
		user_skill_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		skill_id INTEGER NOT NULL REFERENCES skills(skill_id),
		current_xp INTEGER NOT NULL DEFAULT 0,
		current_level INTEGER NOT NULL DEFAULT 1,
		UNIQUE (user_id, skill_id)
	);

	CREATE TABLE IF NOT EXISTS resources (
		resource_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		base_resource_type TEXT NOT NULL,
		skill_id INTEGER REFERENCES skills(skill_id)
	);

	CREATE TABLE IF NOT EXISTS user_resources (
		user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		resource_id INTEGER NOT NULL REFERENCES resources(resource_id),
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		PRIMARY KEY (user_id, resource_id)
	);

	CREATE TABLE IF NOT EXISTS items (
		item_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		item_type TEXT NOT NULL,
		owner_id INTEGER REFERENCES users(user_id) ON DELETE CASCADE,
		required_skill_id INTEGER REFERENCES skills(skill_id),
		equipment_slot TEXT,
		bonus_crit_chance REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS user_equipment (
		user_id INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		slot_type TEXT NOT NULL,
		item_id INTEGER NOT NULL REFERENCES items(item_id) ON DELETE CASCADE,
		PRIMARY KEY (user_id, slot_type)
	);

	CREATE TABLE IF NOT EXISTS contracts (
		contract_id INTEGER PRIMARY KEY AUTOINCREMENT,
		proposer_id INTEGER NOT NULL REFERENCES users(user_id),
		accepted_by_id INTEGER REFERENCES users(user_id),
		title TEXT NOT NULL,
		required_skill_id INTEGER NOT NULL REFERENCES skills(skill_id),
		required_level INTEGER NOT NULL DEFAULT 1,
		reward_amount INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'OPEN',
		created_at INTEGER NOT NULL,
		accepted_at INTEGER,
		completed_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS transactions (
		transaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
		contract_id INTEGER NOT NULL UNIQUE REFERENCES contracts(contract_id) ON DELETE CASCADE,
		reference TEXT NOT NULL UNIQUE,
		amount INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING_ESCROW',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recipes (
		recipe_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		required_skill_id INTEGER NOT NULL REFERENCES skills(skill_id),
		required_skill_level INTEGER NOT NULL DEFAULT 1,
		output_item_name TEXT NOT NULL,
		output_item_type TEXT NOT NULL,
		output_slot TEXT,
		output_required_skill_id INTEGER REFERENCES skills(skill_id),
		output_crit_bonus REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id INTEGER NOT NULL REFERENCES recipes(recipe_id) ON DELETE CASCADE,
		resource_id INTEGER NOT NULL REFERENCES resources(resource_id),
		quantity INTEGER NOT NULL,
		PRIMARY KEY (recipe_id, resource_id)
	);

	CREATE INDEX IF NOT EXISTS idx_user_skills_user ON user_skills(user_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);
	CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// isUniqueViolation reports whether err is a SQLite unique or primary-key
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
