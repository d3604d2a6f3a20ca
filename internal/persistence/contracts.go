package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
)

const contractViewColumns = `
	c.contract_id, c.title, c.reward_amount, c.required_level,
	s.name AS required_skill_name,
	c.proposer_id, u_prop.username AS proposer_name,
	c.accepted_by_id, u_acc.username AS acceptor_name,
	c.status, c.created_at`

const contractViewJoins = `
	FROM contracts c
	JOIN skills s ON c.required_skill_id = s.skill_id
	JOIN users u_prop ON c.proposer_id = u_prop.user_id
	LEFT JOIN users u_acc ON c.accepted_by_id = u_acc.user_id`

// InsertContract creates an OPEN contract and returns its id.
func InsertContract(q sqlx.Ext, proposerID int64, title string, skillID int64, requiredLevel int, reward, now int64) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO contracts (proposer_id, title, required_skill_id, required_level, reward_amount, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		proposerID, title, skillID, requiredLevel, reward, game.ContractOpen, now)
	if err != nil {
		return 0, fmt.Errorf("insert contract: %w", err)
	}
	return res.LastInsertId()
}

// InsertEscrow locks a contract's reward in a PENDING_ESCROW transaction.
func InsertEscrow(q sqlx.Ext, contractID int64, reference string, amount, now int64) error {
	_, err := q.Exec(`
		INSERT INTO transactions (contract_id, reference, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		contractID, reference, amount, game.EscrowPending, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: escrow for contract %d", ErrDuplicate, contractID)
		}
		return fmt.Errorf("insert escrow: %w", err)
	}
	return nil
}

// ContractByID loads one contract.
func ContractByID(q sqlx.Ext, id int64) (game.Contract, error) {
	var c game.Contract
	err := sqlx.Get(q, &c, `
		SELECT contract_id, proposer_id, accepted_by_id, title, required_skill_id,
		       required_level, reward_amount, status, created_at, accepted_at, completed_at
		FROM contracts WHERE contract_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Contract{}, fmt.Errorf("%w: contract %d", ErrNotFound, id)
	}
	if err != nil {
		return game.Contract{}, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

// EscrowByContract loads the escrow transaction locked for a contract.
func EscrowByContract(q sqlx.Ext, contractID int64) (game.EscrowTransaction, error) {
	var t game.EscrowTransaction
	err := sqlx.Get(q, &t, `
		SELECT transaction_id, contract_id, reference, amount, status, created_at
		FROM transactions WHERE contract_id = ?`, contractID)
	if errors.Is(err, sql.ErrNoRows) {
		return game.EscrowTransaction{}, fmt.Errorf("%w: escrow for contract %d", ErrNotFound, contractID)
	}
	if err != nil {
		return game.EscrowTransaction{}, fmt.Errorf("get escrow: %w", err)
	}
	return t, nil
}

// MarkAccepted is the conditional OPEN → ACCEPTED transition. The status
// check and the write are one UPDATE, so of two racing acceptors exactly
// one sees a row change; the other gets false and maps it to a conflict.
func MarkAccepted(q sqlx.Ext, contractID, acceptorID, now int64) (bool, error) {
	res, err := q.Exec(`
		UPDATE contracts SET status = ?, accepted_by_id = ?, accepted_at = ?
		WHERE contract_id = ? AND status = ?`,
		game.ContractAccepted, acceptorID, now, contractID, game.ContractOpen)
	if err != nil {
		return false, fmt.Errorf("accept contract: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("accept contract: %w", err)
	}
	return n > 0, nil
}

// MarkCompleted is the conditional ACCEPTED → COMPLETED transition,
// restricted to the recorded acceptor.
func MarkCompleted(q sqlx.Ext, contractID, executorID, now int64) (bool, error) {
	res, err := q.Exec(`
		UPDATE contracts SET status = ?, completed_at = ?
		WHERE contract_id = ? AND status = ? AND accepted_by_id = ?`,
		game.ContractCompleted, now, contractID, game.ContractAccepted, executorID)
	if err != nil {
		return false, fmt.Errorf("complete contract: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete contract: %w", err)
	}
	return n > 0, nil
}

// ReleaseEscrow flips a contract's escrow transaction to RELEASED.
func ReleaseEscrow(q sqlx.Ext, contractID int64) error {
	res, err := q.Exec(`
		UPDATE transactions SET status = ? WHERE contract_id = ? AND status = ?`,
		game.EscrowReleased, contractID, game.EscrowPending)
	if err != nil {
		return fmt.Errorf("release escrow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release escrow: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: pending escrow for contract %d", ErrNotFound, contractID)
	}
	return nil
}

// OpenContractsForLevels lists OPEN contracts the user qualifies for: the
// contract's (skill, level) must be covered by one of the user's skill
// levels, OR-ed across all their skills. An empty levels map falls back to
// entry-level contracts (required_level == 1) only.
func OpenContractsForLevels(q sqlx.Ext, levels map[int64]int) ([]game.ContractView, error) {
	query := `SELECT ` + contractViewColumns + contractViewJoins + `
		WHERE c.status = ?`
	args := []any{game.ContractOpen}

	if len(levels) == 0 {
		query += ` AND c.required_level = 1`
	} else {
		var parts []string
		for skillID, level := range levels {
			parts = append(parts, `(c.required_skill_id = ? AND c.required_level <= ?)`)
			args = append(args, skillID, level)
		}
		query += ` AND (` + strings.Join(parts, " OR ") + `)`
	}
	query += ` ORDER BY c.required_level ASC, c.created_at DESC`

	var contracts []game.ContractView
	if err := sqlx.Select(q, &contracts, query, args...); err != nil {
		return nil, fmt.Errorf("list open contracts: %w", err)
	}
	return contracts, nil
}

// ParticipantContracts lists ACCEPTED and COMPLETED contracts where the
// user is the proposer or the acceptor — always visible to participants.
func ParticipantContracts(q sqlx.Ext, userID int64) ([]game.ContractView, error) {
	var contracts []game.ContractView
	if err := sqlx.Select(q, &contracts, `SELECT `+contractViewColumns+contractViewJoins+`
		WHERE c.status IN (?, ?)
		AND (c.proposer_id = ? OR c.accepted_by_id = ?)
		ORDER BY c.required_level ASC, c.created_at DESC`,
		game.ContractAccepted, game.ContractCompleted, userID, userID); err != nil {
		return nil, fmt.Errorf("list participant contracts: %w", err)
	}
	return contracts, nil
}

// AllContracts lists every contract, newest first. Admin surface.
func AllContracts(q sqlx.Ext) ([]game.ContractView, error) {
	var contracts []game.ContractView
	if err := sqlx.Select(q, &contracts, `SELECT `+contractViewColumns+contractViewJoins+`
		ORDER BY c.created_at DESC, c.contract_id DESC`); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, nil
}
