package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethel/internal/game"
)

func TestListRecipes(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	recipes, err := e.ListRecipes()
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	plank := recipes[0]
	assert.Equal(t, "Wooden Plank", plank.Name)
	require.Len(t, plank.Ingredients, 1)
	assert.Equal(t, "Raw Wood", plank.Ingredients[0].ResourceName)
	assert.Equal(t, int64(5), plank.Ingredients[0].Quantity)

	axe := recipes[1]
	require.NotNil(t, axe.OutputSlot)
	assert.Equal(t, game.SlotToolMain, *axe.OutputSlot)
	assert.Len(t, axe.Ingredients, 2)
}

func TestCraftItemDebitsIngredients(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")
	setSkillXP(t, e, userID, "Carpentry", 0, 1)
	grantResource(t, e, userID, 1, 7)

	item, err := e.CraftItem(userID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Wooden Plank", item.Name)
	assert.Equal(t, game.ItemTypeMaterial, item.Type)
	assert.Nil(t, item.EquipmentSlot)

	assert.Equal(t, int64(2), resourceQuantity(t, e, userID, 1))

	inventory, err := e.GetInventory(userID)
	require.NoError(t, err)
	require.Len(t, inventory, 1)
	assert.Equal(t, item.ID, inventory[0].ID)
}

func TestCraftItemSkillGate(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")
	setSkillXP(t, e, userID, "Carpentry", 0, 1)
	grantResource(t, e, userID, 1, 8)
	grantResource(t, e, userID, 2, 2)

	// The axe recipe wants Carpentry 2.
	_, err := e.CraftItem(userID, 2)
	require.ErrorIs(t, err, ErrInsufficientSkill)

	setSkillXP(t, e, userID, "Carpentry", 250, 3)
	item, err := e.CraftItem(userID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Woodcutter's Axe", item.Name)
	assert.Equal(t, game.ItemTypeTool, item.Type)
	require.NotNil(t, item.EquipmentSlot)
	assert.Equal(t, game.SlotToolMain, *item.EquipmentSlot)
	require.NotNil(t, item.RequiredSkillID)
	assert.Equal(t, int64(6), *item.RequiredSkillID)
	assert.Equal(t, 0.05, item.BonusCritChance)

	assert.Zero(t, resourceQuantity(t, e, userID, 1))
	assert.Zero(t, resourceQuantity(t, e, userID, 2))
}

func TestCraftItemInsufficientResourcesRollsBack(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")
	setSkillXP(t, e, userID, "Carpentry", 250, 3)

	// Enough wood, no stone. The wood debit must not survive the failure.
	grantResource(t, e, userID, 1, 8)
	_, err := e.CraftItem(userID, 2)
	require.ErrorIs(t, err, ErrInsufficientResources)

	assert.Equal(t, int64(8), resourceQuantity(t, e, userID, 1))
	inventory, err := e.GetInventory(userID)
	require.NoError(t, err)
	assert.Empty(t, inventory)
}

func TestCraftItemNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	userID := mustCreateUser(t, e, "aria")

	_, err := e.CraftItem(userID, 404)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.CraftItem(404, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
