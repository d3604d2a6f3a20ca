package engine

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethel/internal/persistence"
)

func TestCreateUserProvisionsProgression(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")

	profile, err := e.GetUserProfile(userID)
	require.NoError(t, err)
	assert.Equal(t, "aria", profile.Username)
	require.Len(t, profile.Skills, 7)
	require.NotNil(t, profile.Trait)

	var boosted, fresh int
	for _, s := range profile.Skills {
		switch s.CurrentXP {
		case initialBonusXP:
			boosted++
			// 1500 XP lands at level 8 on the curve, whatever the
			// creation write cached.
			assert.Equal(t, 8, s.Level)
		case 0:
			fresh++
			assert.Equal(t, 1, s.Level)
			assert.Equal(t, int64(100), s.XPToNext)
		default:
			t.Fatalf("unexpected creation XP %d for %s", s.CurrentXP, s.Name)
		}
	}
	assert.Equal(t, initialBonusSkills, boosted)
	assert.Equal(t, 4, fresh)

	// The creation write itself caches level 2 on the boosted rows; the
	// curve takes over on the first XP movement.
	err = e.db.WithTx(func(tx *sqlx.Tx) error {
		levels, err := persistence.UserSkillLevels(tx, userID)
		require.NoError(t, err)
		var atTwo int
		for _, level := range levels {
			if level == initialBonusLevel {
				atTwo++
			}
		}
		assert.Equal(t, initialBonusSkills, atTwo)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	mustCreateUser(t, e, "aria")

	_, err := e.CreateUser("aria")
	require.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = e.CreateUser("   ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookupUser(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")

	user, err := e.LookupUser("aria")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "aria", user.Username)

	_, err = e.LookupUser("nobody")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.LookupUser("  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetUserProfileNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_, err := e.GetUserProfile(404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	admin := mustCreateUser(t, e, "overseer")
	player := mustCreateUser(t, e, "player")
	makeAdmin(t, e, admin)

	_, err := e.ListUsers(player)
	require.ErrorIs(t, err, ErrForbidden)

	users, err := e.ListUsers(admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	admin := mustCreateUser(t, e, "overseer")
	player := mustCreateUser(t, e, "player")
	makeAdmin(t, e, admin)

	require.ErrorIs(t, e.DeleteUser(player, admin), ErrForbidden)
	require.ErrorIs(t, e.DeleteUser(admin, admin), ErrForbidden)
	require.ErrorIs(t, e.DeleteUser(admin, 404), ErrNotFound)

	require.NoError(t, e.DeleteUser(admin, player))
	_, err := e.GetUserProfile(player)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKindUnwrapsSentinels(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	_, err := e.GetUserProfile(404)
	assert.Equal(t, ErrNotFound, Kind(err))
	assert.Nil(t, Kind(assert.AnError))
}
