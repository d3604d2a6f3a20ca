package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
	"github.com/talgya/aethel/internal/persistence"
)

// RecipeView is a catalog recipe with its ingredient list.
type RecipeView struct {
	game.Recipe
	Ingredients []game.RecipeIngredient `json:"ingredients"`
}

// ListRecipes returns the crafting catalog with ingredient costs.
func (e *Engine) ListRecipes() ([]RecipeView, error) {
	var views []RecipeView
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		recipes, err := persistence.AllRecipes(tx)
		if err != nil {
			return err
		}
		views = make([]RecipeView, 0, len(recipes))
		for _, r := range recipes {
			ingredients, err := persistence.RecipeIngredients(tx, r.ID)
			if err != nil {
				return err
			}
			views = append(views, RecipeView{Recipe: r, Ingredients: ingredients})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// CraftItem consumes a recipe's ingredients from the user's balances and
// creates the output item in their inventory, atomically. The user's
// level in the recipe's skill gates the craft.
func (e *Engine) CraftItem(userID, recipeID int64) (*game.Item, error) {
	var item game.Item
	err := e.db.WithTx(func(tx *sqlx.Tx) error {
		if _, err := persistence.UserByID(tx, userID); err != nil {
			return notFound(err)
		}
		recipe, err := persistence.RecipeByID(tx, recipeID)
		if err != nil {
			return notFound(err)
		}

		rec, err := persistence.SkillRecordBySkillID(tx, userID, recipe.RequiredSkillID)
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: recipe %q requires a skill the user lacks", ErrInsufficientSkill, recipe.Name)
		}
		if err != nil {
			return err
		}
		if rec.CurrentLevel < recipe.RequiredSkillLevel {
			return fmt.Errorf("%w: recipe %q requires level %d, user is level %d",
				ErrInsufficientSkill, recipe.Name, recipe.RequiredSkillLevel, rec.CurrentLevel)
		}

		ingredients, err := persistence.RecipeIngredients(tx, recipeID)
		if err != nil {
			return err
		}
		for _, ing := range ingredients {
			err := persistence.AddResourceQuantity(tx, userID, ing.ResourceID, -ing.Quantity)
			if errors.Is(err, persistence.ErrInsufficient) {
				return fmt.Errorf("%w: need %d x %s", ErrInsufficientResources, ing.Quantity, ing.ResourceName)
			}
			if err != nil {
				return err
			}
		}

		item = game.Item{
			Name:            recipe.OutputItemName,
			Type:            recipe.OutputItemType,
			OwnerID:         &userID,
			RequiredSkillID: recipe.OutputRequiredSkillID,
			EquipmentSlot:   recipe.OutputSlot,
			BonusCritChance: recipe.OutputCritBonus,
		}
		item.ID, err = persistence.InsertItem(tx, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item crafted", "user_id", userID, "recipe_id", recipeID, "item_id", item.ID)
	return &item, nil
}
