// Package game provides the domain data model for the Aethel progression
// and economy engine: users, the skill catalog, traits, resources, items,
// equipment slots, and trade contracts.
package game

// ContractStatus is the lifecycle state of a trade contract.
type ContractStatus string

const (
	ContractOpen      ContractStatus = "OPEN"
	ContractAccepted  ContractStatus = "ACCEPTED"
	ContractCompleted ContractStatus = "COMPLETED"
	ContractCancelled ContractStatus = "CANCELLED"
)

// StatusRank orders contract statuses for board sorting.
// OPEN sorts first, CANCELLED last.
func StatusRank(s ContractStatus) int {
	switch s {
	case ContractOpen:
		return 1
	case ContractAccepted:
		return 2
	case ContractCompleted:
		return 3
	case ContractCancelled:
		return 4
	default:
		return 99
	}
}

// EscrowStatus is the state of a contract's locked reward.
type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "PENDING_ESCROW"
	EscrowReleased EscrowStatus = "RELEASED"
)

// Item types.
const (
	ItemTypeTool     = "TOOL"
	ItemTypeMaterial = "MATERIAL"
)

// Equipment slots. Tools that boost skill actions occupy the main slot.
const (
	SlotToolMain = "TOOL_MAIN"
)

// Trait modifier codes interpreted by the action resolver.
const (
	TraitTimeFailReduction  = "BONUS_TIME_FAIL_REDUCTION"
	TraitCritRiskArea       = "BONUS_CRIT_RISK_AREA"
	TraitResourceEfficiency = "BONUS_RESOURCE_EFFICIENCY"
	TraitDiscoveryXP        = "BONUS_DISCOVERY_XP"
)

// User is a registered player.
type User struct {
	ID        int64  `db:"user_id" json:"user_id"`
	Username  string `db:"username" json:"username"`
	IsAdmin   bool   `db:"is_admin" json:"is_admin"`
	CreatedAt int64  `db:"created_at" json:"created_at"` // Unix millis
}

// Skill is an immutable catalog entry. A skill has at most one parent,
// forming a two-level hierarchy (the catalog never nests deeper).
type Skill struct {
	ID            int64   `db:"skill_id" json:"skill_id"`
	Name          string  `db:"name" json:"name"`
	BaseClass     string  `db:"base_class" json:"base_class"`
	Description   *string `db:"description" json:"description,omitempty"`
	MaxLevel      int     `db:"max_level" json:"max_level"`
	ParentSkillID *int64  `db:"parent_skill_id" json:"parent_skill_id,omitempty"`
}

// SkillRecord tracks one user's progress in one skill. CurrentLevel caches
// the leveling-curve value for CurrentXP.
type SkillRecord struct {
	ID           int64 `db:"user_skill_id" json:"user_skill_id"`
	UserID       int64 `db:"user_id" json:"user_id"`
	SkillID      int64 `db:"skill_id" json:"skill_id"`
	CurrentXP    int64 `db:"current_xp" json:"current_xp"`
	CurrentLevel int   `db:"current_level" json:"current_level"`
}

// Trait is an immutable catalog entry; exactly one is assigned per user at
// creation, chosen uniformly at random.
type Trait struct {
	ID           int64   `db:"trait_id" json:"trait_id"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description,omitempty"`
	CodeModifier string  `db:"code_modifier" json:"code_modifier"`
}

// Resource is a currency-like catalog entry. SkillID, when set, marks the
// skill whose use drops this resource.
type Resource struct {
	ID      int64  `db:"resource_id" json:"resource_id"`
	Name    string `db:"name" json:"name"`
	Type    string `db:"base_resource_type" json:"base_resource_type"`
	SkillID *int64 `db:"skill_id" json:"skill_id,omitempty"`
}

// ResourceBalance is a user's non-negative quantity of one resource.
type ResourceBalance struct {
	UserID     int64  `db:"user_id" json:"user_id"`
	ResourceID int64  `db:"resource_id" json:"resource_id"`
	Name       string `db:"name" json:"name"`
	Type       string `db:"base_resource_type" json:"base_resource_type"`
	Quantity   int64  `db:"quantity" json:"quantity"`
}

// Item is a concrete object, owned by one user or unowned.
type Item struct {
	ID              int64   `db:"item_id" json:"item_id"`
	Name            string  `db:"name" json:"name"`
	Type            string  `db:"item_type" json:"item_type"`
	OwnerID         *int64  `db:"owner_id" json:"owner_id,omitempty"`
	RequiredSkillID *int64  `db:"required_skill_id" json:"required_skill_id,omitempty"`
	EquipmentSlot   *string `db:"equipment_slot" json:"equipment_slot,omitempty"`
	BonusCritChance float64 `db:"bonus_crit_chance" json:"bonus_crit_chance"`
}

// EquippedItem is an item joined with its slot assignment.
type EquippedItem struct {
	UserID          int64   `db:"user_id" json:"user_id"`
	SlotType        string  `db:"slot_type" json:"slot_type"`
	ItemID          int64   `db:"item_id" json:"item_id"`
	Name            string  `db:"name" json:"name"`
	Type            string  `db:"item_type" json:"item_type"`
	RequiredSkillID *int64  `db:"required_skill_id" json:"required_skill_id,omitempty"`
	BonusCritChance float64 `db:"bonus_crit_chance" json:"bonus_crit_chance"`
}

// Contract is a player-to-player work order backed by an escrow transaction.
type Contract struct {
	ID              int64          `db:"contract_id" json:"contract_id"`
	ProposerID      int64          `db:"proposer_id" json:"proposer_id"`
	AcceptedByID    *int64         `db:"accepted_by_id" json:"accepted_by_id,omitempty"`
	Title           string         `db:"title" json:"title"`
	RequiredSkillID int64          `db:"required_skill_id" json:"required_skill_id"`
	RequiredLevel   int            `db:"required_level" json:"required_level"`
	RewardAmount    int64          `db:"reward_amount" json:"reward_amount"`
	Status          ContractStatus `db:"status" json:"status"`
	CreatedAt       int64          `db:"created_at" json:"created_at"`
	AcceptedAt      *int64         `db:"accepted_at" json:"accepted_at,omitempty"`
	CompletedAt     *int64         `db:"completed_at" json:"completed_at,omitempty"`
}

// ContractView is a contract joined with display names for the board.
type ContractView struct {
	ID                int64          `db:"contract_id" json:"contract_id"`
	Title             string         `db:"title" json:"title"`
	RewardAmount      int64          `db:"reward_amount" json:"reward_amount"`
	RequiredLevel     int            `db:"required_level" json:"required_level"`
	RequiredSkillName string         `db:"required_skill_name" json:"required_skill_name"`
	ProposerID        int64          `db:"proposer_id" json:"proposer_id"`
	ProposerName      string         `db:"proposer_name" json:"proposer_name"`
	AcceptedByID      *int64         `db:"accepted_by_id" json:"accepted_by_id,omitempty"`
	AcceptorName      *string        `db:"acceptor_name" json:"acceptor_name,omitempty"`
	Status            ContractStatus `db:"status" json:"status"`
	CreatedAt         int64          `db:"created_at" json:"created_at"`
}

// EscrowTransaction locks a contract's reward at creation time.
type EscrowTransaction struct {
	ID         int64        `db:"transaction_id" json:"transaction_id"`
	ContractID int64        `db:"contract_id" json:"contract_id"`
	Reference  string       `db:"reference" json:"reference"`
	Amount     int64        `db:"amount" json:"amount"`
	Status     EscrowStatus `db:"status" json:"status"`
	CreatedAt  int64        `db:"created_at" json:"created_at"`
}

// Recipe is a crafting catalog entry. Output fields describe the item the
// recipe produces; slot, skill, and crit bonus are optional (tools set them).
type Recipe struct {
	ID                    int64   `db:"recipe_id" json:"recipe_id"`
	Name                  string  `db:"name" json:"name"`
	RequiredSkillID       int64   `db:"required_skill_id" json:"required_skill_id"`
	RequiredSkillLevel    int     `db:"required_skill_level" json:"required_skill_level"`
	OutputItemName        string  `db:"output_item_name" json:"output_item_name"`
	OutputItemType        string  `db:"output_item_type" json:"output_item_type"`
	OutputSlot            *string `db:"output_slot" json:"output_slot,omitempty"`
	OutputRequiredSkillID *int64  `db:"output_required_skill_id" json:"output_required_skill_id,omitempty"`
	OutputCritBonus       float64 `db:"output_crit_bonus" json:"output_crit_bonus"`
}

// RecipeIngredient is one resource cost of a recipe.
type RecipeIngredient struct {
	RecipeID     int64  `db:"recipe_id" json:"recipe_id"`
	ResourceID   int64  `db:"resource_id" json:"resource_id"`
	ResourceName string `db:"resource_name" json:"resource_name"`
	Quantity     int64  `db:"quantity" json:"quantity"`
}
