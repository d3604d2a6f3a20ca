package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
	"github.com/talgya/aethel/internal/leveling"
	"github.com/talgya/aethel/internal/persistence"
)

const (
	initialBonusSkills = 3
	initialBonusXP     = 1500
	initialBonusLevel  = 2
)

// SkillProgress is one profile line: a skill with curve-derived fields.
type SkillProgress struct {
	SkillID     int64  `json:"skill_id"`
	Name        string `json:"name"`
	BaseClass   string `json:"base_class"`
	CurrentXP   int64  `json:"current_xp"`
	Level       int    `json:"current_level"`
	XPToNext    int64  `json:"xp_to_next"`
	XPIntoLevel int64  `json:"xp_on_level"`
}

// UserProfile is the full profile view.
type UserProfile struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Skills   []SkillProgress `json:"skills"`
	Trait    *game.Trait     `json:"trait"`
}

// CreateUser registers a user and provisions their progression state: one
// skill record per catalog skill, three of them randomly pre-boosted with
// a fixed XP bonus, and one uniformly random trait.
func (e *Engine) CreateUser(username string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	var userID int64
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		id, err := persistence.InsertUser(tx, username, nowMillis())
		if errors.Is(err, persistence.ErrDuplicate) {
			return fmt.Errorf("%w: %q", ErrDuplicateUsername, username)
		}
		if err != nil {
			return err
		}

		skills, err := persistence.AllSkills(tx)
		if err != nil {
			return err
		}
		boosted := e.pickBonusSkills(skills)
		for _, s := range skills {
			xp, level := int64(0), 1
			if boosted[s.ID] {
				xp, level = initialBonusXP, initialBonusLevel
			}
			if err := persistence.InsertSkillRecord(tx, id, s.ID, xp, level); err != nil {
				return err
			}
		}

		traits, err := persistence.AllTraits(tx)
		if err != nil {
			return err
		}
		if len(traits) > 0 {
			trait := traits[e.pick(len(traits))]
			if err := persistence.InsertUserTrait(tx, id, trait.ID); err != nil {
				return err
			}
		}

		userID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("user created", "user_id", userID, "username", username)
	return userID, nil
}

// pickBonusSkills chooses the pre-boosted skills, redrawing on collisions
// until enough distinct ones are picked.
func (e *Engine) pickBonusSkills(skills []game.Skill) map[int64]bool {
	boosted := make(map[int64]bool)
	want := initialBonusSkills
	if want > len(skills) {
		want = len(skills)
	}
	for len(boosted) < want {
		boosted[skills[e.pick(len(skills))].ID] = true
	}
	return boosted
}

// LookupUser resolves a username to its user row, the way a game client
// signs in.
func (e *Engine) LookupUser(username string) (*game.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	var user game.User
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		user, err = persistence.UserByUsername(tx, username)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserProfile returns the user's skills with curve-derived level fields
// and their trait.
func (e *Engine) GetUserProfile(userID int64) (*UserProfile, error) {
	var profile *UserProfile
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		user, err := persistence.UserByID(tx, userID)
		if err != nil {
			return notFound(err)
		}

		rows, err := persistence.UserSkillRows(tx, userID)
		if err != nil {
			return err
		}
		skills := make([]SkillProgress, 0, len(rows))
		for _, row := range rows {
			info := leveling.Compute(row.CurrentXP)
			skills = append(skills, SkillProgress{
				SkillID:     row.SkillID,
				Name:        row.Name,
				BaseClass:   row.BaseClass,
				CurrentXP:   row.CurrentXP,
				Level:       info.Level,
				XPToNext:    info.XPToNext,
				XPIntoLevel: info.XPIntoLevel,
			})
		}

		trait, err := persistence.UserTrait(tx, userID)
		if err != nil {
			return err
		}

		profile = &UserProfile{
			UserID:   user.ID,
			Username: user.Username,
			Skills:   skills,
			Trait:    trait,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ListUsers returns every user. Administrator surface.
func (e *Engine) ListUsers(actorID int64) ([]game.User, error) {
	var users []game.User
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if err := requireAdmin(tx, actorID); err != nil {
			return err
		}
		var err error
		users, err = persistence.AllUsers(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes a user and all dependent state. Administrator
// surface; self-deletion is not permitted.
func (e *Engine) DeleteUser(actorID, targetID int64) error {
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if err := requireAdmin(tx, actorID); err != nil {
			return err
		}
		if actorID == targetID {
			return fmt.Errorf("%w: administrators cannot delete themselves", ErrForbidden)
		}
		if err := persistence.DeleteUser(tx, targetID); err != nil {
			return notFound(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("user deleted", "user_id", targetID, "actor_id", actorID)
	return nil
}

func requireAdmin(tx *sqlx.Tx, actorID int64) error {
	actor, err := persistence.UserByID(tx, actorID)
	if err != nil {
		return notFound(err)
	}
	if !actor.IsAdmin {
		return fmt.Errorf("%w: user %d is not an administrator", ErrForbidden, actorID)
	}
	return nil
}
