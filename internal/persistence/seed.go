package persistence

import "fmt"

// SeedCatalog inserts the static reference data: the skill tree, traits,
// drop resources, and crafting recipes. Idempotent — rerunning against a
// seeded database is a no-op.
func (db *DB) SeedCatalog() error {
	seed := `
	INSERT OR IGNORE INTO skills (skill_id, name, base_class, description, parent_skill_id) VALUES
		(1, 'Pioneering', 'Pioneer', 'Basic survival and food gathering.', NULL),
		(2, 'Melee', 'Fighter', 'Close combat and escort work.', NULL),
		(3, 'Resource Gathering', 'Gatherer', 'Extraction of raw materials.', NULL),
		(4, 'Basic Fabrication', 'Fabricator', 'Construction of simple objects and shelters.', NULL),
		(5, 'Commerce', 'Wayfarer', 'Buying, selling, and inventory management.', NULL),
		(6, 'Woodcutting', 'Gatherer', NULL, 3),
		(7, 'Carpentry', 'Fabricator', NULL, 4);

	INSERT OR IGNORE INTO traits (trait_id, name, description, code_modifier) VALUES
		(1, 'Patient', 'Fails less often on long actions.', 'BONUS_TIME_FAIL_REDUCTION'),
		(2, 'Bold', 'Better critical odds in dangerous areas.', 'BONUS_CRIT_RISK_AREA'),
		(3, 'Pragmatic', 'Consumes fewer materials while crafting.', 'BONUS_RESOURCE_EFFICIENCY'),
		(4, 'Sage', 'Bonus XP from first discoveries.', 'BONUS_DISCOVERY_XP');

	INSERT OR IGNORE INTO resources (resource_id, name, base_resource_type, skill_id) VALUES
		(1, 'Raw Wood', 'WOOD', 6),
		(2, 'Raw Stone', 'ORE', 3),
		(3, 'Medicinal Herb', 'HERB', 3);

	INSERT OR IGNORE INTO recipes
		(recipe_id, name, required_skill_id, required_skill_level,
		 output_item_name, output_item_type, output_slot, output_required_skill_id, output_crit_bonus) VALUES
		(1, 'Wooden Plank', 7, 1, 'Wooden Plank', 'MATERIAL', NULL, NULL, 0),
		(2, 'Woodcutter''s Axe', 7, 2, 'Woodcutter''s Axe', 'TOOL', 'TOOL_MAIN', 6, 0.05);

	INSERT OR IGNORE INTO recipe_ingredients (recipe_id, resource_id, quantity) VALUES
		(1, 1, 5),
		(2, 1, 8),
		(2, 2, 2);
	`
	if _, err := db.conn.Exec(seed); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}
