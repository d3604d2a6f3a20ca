package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/action"
	"github.com/talgya/aethel/internal/game"
	"github.com/talgya/aethel/internal/leveling"
	"github.com/talgya/aethel/internal/persistence"
)

// Drop reports resources collected by a skill use.
type Drop struct {
	ResourceID int64  `json:"resource_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	NewBalance int64  `json:"new_balance"`
}

// ParentGain reports the trickle-up share credited to the used skill's
// parent.
type ParentGain struct {
	SkillID   int64  `json:"skill_id"`
	Name      string `json:"name"`
	XPGained  int64  `json:"xp_gained"`
	Level     int    `json:"current_level"`
	LeveledUp bool   `json:"leveled_up"`
}

// ActionResult is the full outcome of one skill use: the roll, the XP
// ledger movement, the recomputed level, and any resource drop.
type ActionResult struct {
	SkillName  string      `json:"skill_name"`
	Roll       int         `json:"roll"`
	Multiplier float64     `json:"multiplier"`
	XPGained   int64       `json:"xp_gained"`
	TotalXP    int64       `json:"total_xp"`
	Level      int         `json:"current_level"`
	XPToNext   int64       `json:"xp_to_next"`
	LeveledUp  bool        `json:"leveled_up"`
	Parent     *ParentGain `json:"parent,omitempty"`
	Drop       *Drop       `json:"drop,omitempty"`
	Message    string      `json:"message"`
}

// UseSkill performs one use of the named skill: roll, apply trait and
// equipped-tool modifiers, credit XP, recompute the level from the curve,
// and grant the skill's resource drop unless the roll was a critical
// failure. The whole movement is one transaction.
func (e *Engine) UseSkill(userID int64, skillName string) (*ActionResult, error) {
	skillName = strings.TrimSpace(skillName)
	if skillName == "" {
		return nil, fmt.Errorf("%w: skill name is required", ErrInvalidInput)
	}

	roll := e.roller.Roll()

	var result *ActionResult
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, userID); err != nil {
			return notFound(err)
		}
		rec, err := persistence.SkillRecordByName(tx, userID, skillName)
		if err != nil {
			return notFound(err)
		}

		traitCode := ""
		if trait, err := persistence.UserTrait(tx, userID); err != nil {
			return err
		} else if trait != nil {
			traitCode = trait.CodeModifier
		}

		compatible, err := persistence.CompatibleSkillIDs(tx, rec.SkillID)
		if err != nil {
			return err
		}
		toolBonus, err := persistence.EquippedToolBonus(tx, userID, compatible)
		if err != nil {
			return err
		}

		outcome := action.Resolve(roll, traitCode, toolBonus)

		// The stored level is a cache; the curve over cumulative XP is
		// authoritative, so every write recomputes it.
		totalXP := rec.CurrentXP + outcome.XPGain
		before := leveling.LevelOf(rec.CurrentXP)
		info := leveling.Compute(totalXP)
		if err := persistence.UpdateSkillRecord(tx, rec.ID, totalXP, info.Level); err != nil {
			return err
		}

		message := fmt.Sprintf("%s You gain %s XP in %s.",
			outcome.Message, humanize.Comma(outcome.XPGain), skillName)
		if info.Level > before {
			message += fmt.Sprintf(" %s reached level %d!", skillName, info.Level)
		}

		parent, err := e.shareWithParent(tx, userID, rec.SkillID, outcome.XPGain)
		if err != nil {
			return err
		}
		if parent != nil {
			message += fmt.Sprintf(" %s XP flows into %s.", humanize.Comma(parent.XPGained), parent.Name)
			if parent.LeveledUp {
				message += fmt.Sprintf(" %s reached level %d!", parent.Name, parent.Level)
			}
		}

		var drop *Drop
		if !outcome.CriticalFailure() {
			drop, err = e.grantDrop(tx, userID, rec.SkillID, outcome.Critical())
			if err != nil {
				return err
			}
			if drop != nil {
				message += fmt.Sprintf(" You collect %d x %s.", drop.Quantity, drop.Name)
			}
		}

		result = &ActionResult{
			SkillName:  skillName,
			Roll:       outcome.Roll,
			Multiplier: outcome.Multiplier,
			XPGained:   outcome.XPGain,
			TotalXP:    totalXP,
			Level:      info.Level,
			XPToNext:   info.XPToNext,
			LeveledUp:  info.Level > before,
			Parent:     parent,
			Drop:       drop,
			Message:    message,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("skill used",
		"user_id", userID, "skill", skillName, "roll", result.Roll,
		"xp_gained", result.XPGained, "level", result.Level)
	return result, nil
}

// shareWithParent trickles a tenth of the gain (floored) up to the used
// skill's parent, when one exists and the user holds a record in it. A
// nil ParentGain means nothing was credited.
func (e *Engine) shareWithParent(tx *sqlx.Tx, userID, skillID, xpGain int64) (*ParentGain, error) {
	skill, err := persistence.SkillByID(tx, skillID)
	if err != nil {
		return nil, err
	}
	share := xpGain / 10
	if skill.ParentSkillID == nil || share <= 0 {
		return nil, nil
	}

	parentRec, err := persistence.SkillRecordBySkillID(tx, userID, *skill.ParentSkillID)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	parentSkill, err := persistence.SkillByID(tx, *skill.ParentSkillID)
	if err != nil {
		return nil, err
	}

	total := parentRec.CurrentXP + share
	before := leveling.LevelOf(parentRec.CurrentXP)
	info := leveling.Compute(total)
	if err := persistence.UpdateSkillRecord(tx, parentRec.ID, total, info.Level); err != nil {
		return nil, err
	}
	return &ParentGain{
		SkillID:   parentSkill.ID,
		Name:      parentSkill.Name,
		XPGained:  share,
		Level:     info.Level,
		LeveledUp: info.Level > before,
	}, nil
}

// grantDrop credits the resource the skill yields, doubled on a critical.
// A nil Drop means the skill yields nothing.
func (e *Engine) grantDrop(tx *sqlx.Tx, userID, skillID int64, critical bool) (*Drop, error) {
	resource, err := persistence.DropResourceForSkill(tx, skillID)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	quantity := int64(1)
	if critical {
		quantity = 2
	}
	if err := persistence.AddResourceQuantity(tx, userID, resource.ID, quantity); err != nil {
		return nil, err
	}
	balance, err := persistence.ResourceQuantity(tx, userID, resource.ID)
	if err != nil {
		return nil, err
	}
	return &Drop{
		ResourceID: resource.ID,
		Name:       resource.Name,
		Quantity:   quantity,
		NewBalance: balance,
	}, nil
}

// GetResources lists a user's resource balances.
func (e *Engine) GetResources(userID int64) ([]game.ResourceBalance, error) {
	var balances []game.ResourceBalance
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, userID); err != nil {
			return notFound(err)
		}
		var err error
		balances, err = persistence.UserResources(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// AddResources grants a user resources out of thin air. Administrator
// surface; quantity must be positive.
func (e *Engine) AddResources(actorID, targetID, resourceID, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	var balance int64
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if err := requireAdmin(tx, actorID); err != nil {
			return err
		}
		if _, err := persistence.UserByID(tx, targetID); err != nil {
			return notFound(err)
		}
		if _, err := persistence.ResourceByID(tx, resourceID); err != nil {
			return notFound(err)
		}
		if err := persistence.AddResourceQuantity(tx, targetID, resourceID, quantity); err != nil {
			return err
		}
		var err error
		balance, err = persistence.ResourceQuantity(tx, targetID, resourceID)
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.Info("resources granted",
		"actor_id", actorID, "user_id", targetID,
		"resource_id", resourceID, "quantity", quantity)
	return balance, nil
}
