package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
)

// AllSkills lists the skill catalog.
func AllSkills(q sqlx.Ext) ([]game.Skill, error) {
	var skills []game.Skill
	if err := sqlx.Select(q, &skills, `
		SELECT skill_id, name, base_class, description, max_level, parent_skill_id
		FROM skills ORDER BY skill_id`); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// SkillByID loads one catalog skill.
func SkillByID(q sqlx.Ext, id int64) (game.Skill, error) {
	var s game.Skill
	err := sqlx.Get(q, &s, `
		SELECT skill_id, name, base_class, description, max_level, parent_skill_id
		FROM skills WHERE skill_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Skill{}, fmt.Errorf("%w: skill %d", ErrNotFound, id)
	}
	if err != nil {
		return game.Skill{}, fmt.Errorf("get skill: %w", err)
	}
	return s, nil
}

// SkillByName loads one catalog skill by unique name.
func SkillByName(q sqlx.Ext, name string) (game.Skill, error) {
	var s game.Skill
	err := sqlx.Get(q, &s, `
		SELECT skill_id, name, base_class, description, max_level, parent_skill_id
		FROM skills WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Skill{}, fmt.Errorf("%w: skill %q", ErrNotFound, name)
	}
	if err != nil {
		return game.Skill{}, fmt.Errorf("get skill: %w", err)
	}
	return s, nil
}

// CompatibleSkillIDs returns the sibling set of a skill: itself, its parent
// (if any), and its children. The catalog hierarchy is one level deep, so a
// flat adjacency lookup is enough. Used for tool compatibility checks.
func CompatibleSkillIDs(q sqlx.Ext, skillID int64) ([]int64, error) {
	skill, err := SkillByID(q, skillID)
	if err != nil {
		return nil, err
	}

	ids := []int64{skillID}
	if skill.ParentSkillID != nil {
		ids = append(ids, *skill.ParentSkillID)
	}

	var children []int64
	if err := sqlx.Select(q, &children, `SELECT skill_id FROM skills WHERE parent_skill_id = ?`, skillID); err != nil {
		return nil, fmt.Errorf("list child skills: %w", err)
	}
	return append(ids, children...), nil
}

// InsertSkillRecord provisions one (user, skill) progress row.
func InsertSkillRecord(q sqlx.Ext, userID, skillID, xp int64, level int) error {
	_, err := q.Exec(`
		INSERT INTO user_skills (user_id, skill_id, current_xp, current_level)
		VALUES (?, ?, ?, ?)`, userID, skillID, xp, level)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: skill record (%d, %d)", ErrDuplicate, userID, skillID)
		}
		return fmt.Errorf("insert skill record: %w", err)
	}
	return nil
}

// SkillRecordByName loads a user's progress row for the named skill.
func SkillRecordByName(q sqlx.Ext, userID int64, skillName string) (game.SkillRecord, error) {
	var rec game.SkillRecord
	err := sqlx.Get(q, &rec, `
		SELECT us.user_skill_id, us.user_id, us.skill_id, us.current_xp, us.current_level
		FROM user_skills us
		JOIN skills s ON us.skill_id = s.skill_id
		WHERE us.user_id = ? AND s.name = ?`, userID, skillName)
	if errors.Is(err, sql.ErrNoRows) {
		return game.SkillRecord{}, fmt.Errorf("%w: skill %q for user %d", ErrNotFound, skillName, userID)
	}
	if err != nil {
		return game.SkillRecord{}, fmt.Errorf("get skill record: %w", err)
	}
	return rec, nil
}

// SkillRecordBySkillID loads a user's progress row for the given skill id.
func SkillRecordBySkillID(q sqlx.Ext, userID, skillID int64) (game.SkillRecord, error) {
	var rec game.SkillRecord
	err := sqlx.Get(q, &rec, `
		SELECT user_skill_id, user_id, skill_id, current_xp, current_level
		FROM user_skills WHERE user_id = ? AND skill_id = ?`, userID, skillID)
	if errors.Is(err, sql.ErrNoRows) {
		return game.SkillRecord{}, fmt.Errorf("%w: skill record (%d, %d)", ErrNotFound, userID, skillID)
	}
	if err != nil {
		return game.SkillRecord{}, fmt.Errorf("get skill record: %w", err)
	}
	return rec, nil
}

// UpdateSkillRecord persists new cumulative XP and the cached level.
func UpdateSkillRecord(q sqlx.Ext, recordID, xp int64, level int) error {
	_, err := q.Exec(`UPDATE user_skills SET current_xp = ?, current_level = ? WHERE user_skill_id = ?`,
		xp, level, recordID)
	if err != nil {
		return fmt.Errorf("update skill record: %w", err)
	}
	return nil
}

// UserSkillRow is a progress row joined with its catalog entry, for
// profile rendering.
type UserSkillRow struct {
	SkillID   int64  `db:"skill_id"`
	Name      string `db:"name"`
	BaseClass string `db:"base_class"`
	CurrentXP int64  `db:"current_xp"`
}

// UserSkillRows lists a user's progress joined with skill names, grouped
// by base class like the profile screen shows them.
func UserSkillRows(q sqlx.Ext, userID int64) ([]UserSkillRow, error) {
	var rows []UserSkillRow
	if err := sqlx.Select(q, &rows, `
		SELECT s.skill_id, s.name, s.base_class, us.current_xp
		FROM user_skills us
		JOIN skills s ON us.skill_id = s.skill_id
		WHERE us.user_id = ?
		ORDER BY s.base_class, s.skill_id`, userID); err != nil {
		return nil, fmt.Errorf("list user skills: %w", err)
	}
	return rows, nil
}

// UserSkillLevels maps skill id to cached level for one user.
func UserSkillLevels(q sqlx.Ext, userID int64) (map[int64]int, error) {
	var rows []struct {
		SkillID int64 `db:"skill_id"`
		Level   int   `db:"current_level"`
	}
	if err := sqlx.Select(q, &rows, `SELECT skill_id, current_level FROM user_skills WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("list skill levels: %w", err)
	}
	levels := make(map[int64]int, len(rows))
	for _, r := range rows {
		levels[r.SkillID] = r.Level
	}
	return levels, nil
}
