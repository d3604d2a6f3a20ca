package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
	"github.com/talgya/aethel/internal/persistence"
)

// Delivery is one resource quantity handed from the executor to the
// proposer when a contract completes.
type Delivery struct {
	ResourceID int64 `json:"resource_id" validate:"required"`
	Quantity   int64 `json:"quantity" validate:"gt=0"`
}

// CreateContract opens a work contract and locks its reward in a pending
// escrow transaction, both in one write.
func (e *Engine) CreateContract(proposerID int64, title, skillName string, requiredLevel int, reward int64) (*game.Contract, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if reward <= 0 {
		return nil, fmt.Errorf("%w: reward must be positive", ErrInvalidInput)
	}
	if requiredLevel < 1 {
		return nil, fmt.Errorf("%w: required level must be at least 1", ErrInvalidInput)
	}

	var contract game.Contract
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, proposerID); err != nil {
			return notFound(err)
		}
		skill, err := persistence.SkillByName(tx, skillName)
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: unknown skill %q", ErrInvalidInput, skillName)
		}
		if err != nil {
			return err
		}

		now := nowMillis()
		contractID, err := persistence.InsertContract(tx, proposerID, title, skill.ID, requiredLevel, reward, now)
		if err != nil {
			return err
		}
		if err := persistence.InsertEscrow(tx, contractID, uuid.NewString(), reward, now); err != nil {
			return err
		}

		contract, err = persistence.ContractByID(tx, contractID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("contract created",
		"contract_id", contract.ID, "proposer_id", proposerID,
		"skill", skillName, "reward", reward)
	return &contract, nil
}

// ListVisibleContracts returns the user's view of the board: OPEN
// contracts they qualify for, plus ACCEPTED and COMPLETED contracts they
// are party to. Users with no skill records see entry-level openings only.
func (e *Engine) ListVisibleContracts(userID int64) ([]game.ContractView, error) {
	var visible []game.ContractView
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		levels, err := persistence.UserSkillLevels(tx, userID)
		if err != nil {
			return err
		}
		open, err := persistence.OpenContractsForLevels(tx, levels)
		if err != nil {
			return err
		}
		participant, err := persistence.ParticipantContracts(tx, userID)
		if err != nil {
			return err
		}
		visible = append(open, participant...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if ra, rb := game.StatusRank(a.Status), game.StatusRank(b.Status); ra != rb {
			return ra < rb
		}
		if a.RequiredLevel != b.RequiredLevel {
			return a.RequiredLevel < b.RequiredLevel
		}
		return a.CreatedAt > b.CreatedAt
	})
	return visible, nil
}

// AcceptContract claims an OPEN contract for the acceptor. Of two racing
// acceptors exactly one wins; the loser gets Conflict.
func (e *Engine) AcceptContract(contractID, acceptorID int64) (*game.Contract, error) {
	var contract game.Contract
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		c, err := persistence.ContractByID(tx, contractID)
		if err != nil {
			return notFound(err)
		}
		if _, err := persistence.UserByID(tx, acceptorID); err != nil {
			return notFound(err)
		}
		if c.ProposerID == acceptorID {
			return fmt.Errorf("%w: proposers cannot accept their own contract", ErrForbidden)
		}

		ok, err := persistence.MarkAccepted(tx, contractID, acceptorID, nowMillis())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: contract %d is no longer open", ErrConflict, contractID)
		}

		contract, err = persistence.ContractByID(tx, contractID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("contract accepted", "contract_id", contractID, "acceptor_id", acceptorID)
	return &contract, nil
}

// CompleteContract closes an ACCEPTED contract: the executor (who must be
// the recorded acceptor) hands the delivered resources to the proposer,
// the status flips to COMPLETED, and the escrowed reward is released. Any
// failure, including a short delivery, rolls the whole movement back.
func (e *Engine) CompleteContract(contractID, executorID int64, delivered []Delivery) (*game.Contract, error) {
	var contract game.Contract
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		c, err := persistence.ContractByID(tx, contractID)
		if err != nil {
			return notFound(err)
		}
		if c.Status != game.ContractAccepted {
			return fmt.Errorf("%w: contract %d is %s, not %s", ErrConflict, contractID, c.Status, game.ContractAccepted)
		}
		if c.AcceptedByID == nil || *c.AcceptedByID != executorID {
			return fmt.Errorf("%w: only the acceptor can complete contract %d", ErrForbidden, contractID)
		}

		for _, d := range delivered {
			if d.Quantity <= 0 {
				return fmt.Errorf("%w: delivery quantity must be positive", ErrInvalidInput)
			}
			err := persistence.AddResourceQuantity(tx, executorID, d.ResourceID, -d.Quantity)
			if errors.Is(err, persistence.ErrInsufficient) {
				return fmt.Errorf("%w: resource %d", ErrInsufficientInventory, d.ResourceID)
			}
			if err != nil {
				return err
			}
			if err := persistence.AddResourceQuantity(tx, c.ProposerID, d.ResourceID, d.Quantity); err != nil {
				return err
			}
		}

		ok, err := persistence.MarkCompleted(tx, contractID, executorID, nowMillis())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: contract %d changed state", ErrConflict, contractID)
		}
		if err := persistence.ReleaseEscrow(tx, contractID); err != nil {
			return err
		}

		contract, err = persistence.ContractByID(tx, contractID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("contract completed", "contract_id", contractID, "executor_id", executorID)
	return &contract, nil
}

// ListAllContracts lists the full board regardless of status or
// qualification. Administrator surface.
func (e *Engine) ListAllContracts(actorID int64) ([]game.ContractView, error) {
	var contracts []game.ContractView
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if err := requireAdmin(tx, actorID); err != nil {
			return err
		}
		var err error
		contracts, err = persistence.AllContracts(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contracts, nil
}
