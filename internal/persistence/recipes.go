package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/aethel/internal/game"
)

// AllRecipes lists the crafting catalog.
func AllRecipes(q sqlx.Ext) ([]game.Recipe, error) {
	var recipes []game.Recipe
	if err := sqlx.Select(q, &recipes, `
		SELECT recipe_id, name, required_skill_id, required_skill_level,
		       output_item_name, output_item_type, output_slot,
		       output_required_skill_id, output_crit_bonus
		FROM recipes ORDER BY recipe_id`); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// RecipeByID loads one recipe.
func RecipeByID(q sqlx.Ext, id int64) (game.Recipe, error) {
	var r game.Recipe
	err := sqlx.Get(q, &r, `
		SELECT recipe_id, name, required_skill_id, required_skill_level,
		       output_item_name, output_item_type, output_slot,
		       output_required_skill_id, output_crit_bonus
		FROM recipes WHERE recipe_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Recipe{}, fmt.Errorf("%w: recipe %d", ErrNotFound, id)
	}
	if err != nil {
		return game.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// RecipeIngredients lists the resource costs of a recipe.
func RecipeIngredients(q sqlx.Ext, recipeID int64) ([]game.RecipeIngredient, error) {
	var ingredients []game.RecipeIngredient
	if err := sqlx.Select(q, &ingredients, `
		SELECT ri.recipe_id, ri.resource_id, r.name AS resource_name, ri.quantity
		FROM recipe_ingredients ri
		JOIN resources r ON ri.resource_id = r.resource_id
		WHERE ri.recipe_id = ?
		ORDER BY ri.resource_id`, recipeID); err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}
