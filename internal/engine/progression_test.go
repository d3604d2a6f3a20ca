package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethel/internal/game"
)

func TestUseSkillBaseSuccess(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 50)
	userID := mustCreateUser(t, e, "aria")
	setTrait(t, e, userID, 1)
	setSkillXP(t, e, userID, "Melee", 0, 1)

	res, err := e.UseSkill(userID, "Melee")
	require.NoError(t, err)
	assert.Equal(t, 50, res.Roll)
	assert.Equal(t, 1.0, res.Multiplier)
	assert.Equal(t, int64(50), res.XPGained)
	assert.Equal(t, int64(50), res.TotalXP)
	assert.Equal(t, 1, res.Level)
	assert.Equal(t, int64(50), res.XPToNext)
	assert.False(t, res.LeveledUp)
	assert.Nil(t, res.Parent, "Melee has no parent skill")
	assert.Nil(t, res.Drop, "Melee yields no resource")
	assert.Contains(t, res.Message, "Base success")
	assert.Contains(t, res.Message, "50 XP")
}

func TestUseSkillCriticalDoublesDrop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 95)
	userID := mustCreateUser(t, e, "aria")
	setTrait(t, e, userID, 1)
	setSkillXP(t, e, userID, "Resource Gathering", 0, 1)

	res, err := e.UseSkill(userID, "Resource Gathering")
	require.NoError(t, err)
	assert.Equal(t, 2.5, res.Multiplier)
	assert.Equal(t, int64(125), res.XPGained)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Level)
	assert.Contains(t, res.Message, "reached level 2")

	require.NotNil(t, res.Drop)
	assert.Equal(t, "Raw Stone", res.Drop.Name)
	assert.Equal(t, int64(2), res.Drop.Quantity)
	assert.Equal(t, int64(2), res.Drop.NewBalance)
}

func TestUseSkillCriticalFailureSuppressesDrop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 2)
	userID := mustCreateUser(t, e, "aria")
	setTrait(t, e, userID, 1)
	setSkillXP(t, e, userID, "Resource Gathering", 0, 1)

	res, err := e.UseSkill(userID, "Resource Gathering")
	require.NoError(t, err)
	assert.Equal(t, 0.1, res.Multiplier)
	assert.Equal(t, int64(5), res.XPGained)
	assert.Nil(t, res.Drop)
	assert.Contains(t, res.Message, "Critical failure")
	assert.Zero(t, resourceQuantity(t, e, userID, 2))
}

func TestUseSkillEquippedToolLowersThreshold(t *testing.T) {
	t.Parallel()

	// 88 is below the base threshold of 90 but above the tool-adjusted 85.
	e := newTestEngine(t, 88, 88)
	userID := mustCreateUser(t, e, "aria")
	setTrait(t, e, userID, 1)
	setSkillXP(t, e, userID, "Woodcutting", 0, 1)

	skillID := int64(6)
	slot := game.SlotToolMain
	itemID := giveItem(t, e, game.Item{
		Name:            "Woodcutter's Axe",
		Type:            game.ItemTypeTool,
		OwnerID:         &userID,
		RequiredSkillID: &skillID,
		EquipmentSlot:   &slot,
		BonusCritChance: 0.05,
	})
	_, err := e.EquipItem(userID, itemID)
	require.NoError(t, err)

	res, err := e.UseSkill(userID, "Woodcutting")
	require.NoError(t, err)
	assert.Equal(t, 2.5, res.Multiplier)
	assert.Contains(t, res.Message, "tool")
	require.NotNil(t, res.Drop)
	assert.Equal(t, "Raw Wood", res.Drop.Name)
	assert.Equal(t, int64(2), res.Drop.Quantity)

	// The axe is bound to Woodcutting; the parent skill benefits too.
	res, err = e.UseSkill(userID, "Resource Gathering")
	require.NoError(t, err)
	assert.Equal(t, 2.5, res.Multiplier)
}

func TestUseSkillSharesXPWithParent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 50)
	userID := mustCreateUser(t, e, "aria")
	setTrait(t, e, userID, 1)
	setSkillXP(t, e, userID, "Woodcutting", 0, 1)
	setSkillXP(t, e, userID, "Resource Gathering", 96, 1)

	res, err := e.UseSkill(userID, "Woodcutting")
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.XPGained)

	// A tenth of the gain trickles up, tipping the parent over level 1.
	require.NotNil(t, res.Parent)
	assert.Equal(t, "Resource Gathering", res.Parent.Name)
	assert.Equal(t, int64(5), res.Parent.XPGained)
	assert.Equal(t, 2, res.Parent.Level)
	assert.True(t, res.Parent.LeveledUp)
	assert.Contains(t, res.Message, "flows into Resource Gathering")
	assert.Contains(t, res.Message, "Resource Gathering reached level 2")

	parentRec := skillRecord(t, e, userID, "Resource Gathering")
	assert.Equal(t, int64(101), parentRec.CurrentXP)
	assert.Equal(t, 2, parentRec.CurrentLevel)
}

func TestUseSkillTraitUpgradesHighRoll(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 85)
	userID := mustCreateUser(t, e, "aria")
	setTrait(t, e, userID, 2) // Bold
	setSkillXP(t, e, userID, "Melee", 0, 1)

	res, err := e.UseSkill(userID, "Melee")
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Multiplier)
	assert.Equal(t, int64(150), res.XPGained)
	assert.Contains(t, res.Message, "Bold")
}

func TestUseSkillNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, 50)
	userID := mustCreateUser(t, e, "aria")

	_, err := e.UseSkill(userID, "Alchemy")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.UseSkill(404, "Melee")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.UseSkill(userID, "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddResources(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	admin := mustCreateUser(t, e, "overseer")
	player := mustCreateUser(t, e, "player")
	makeAdmin(t, e, admin)

	_, err := e.AddResources(player, player, 1, 5)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = e.AddResources(admin, player, 1, 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.AddResources(admin, player, 404, 5)
	require.ErrorIs(t, err, ErrNotFound)

	balance, err := e.AddResources(admin, player, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)

	balance, err = e.AddResources(admin, player, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(8), balance)

	balances, err := e.GetResources(player)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "Raw Wood", balances[0].Name)
	assert.Equal(t, int64(8), balances[0].Quantity)
}
