package domain

import "fmt"

// Kind is the item category tag. Every operation in the system switches on
// this tag explicitly; there is no shared base type.
type Kind string

const (
	// KindBase is a raw material: consumed, never crafted. Base materials
	// have no recipe and an implicit output quantity of 1.
	KindBase Kind = "base"
	// KindMaterial is an intermediate crafted item.
	KindMaterial Kind = "material"
	// KindProduct is a final crafted item.
	KindProduct Kind = "product"
)

// ParseKind validates a kind tag from external input (HTTP, CSV, JSON dumps).
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBase, KindMaterial, KindProduct:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Craftable reports whether items of this kind carry a recipe.
func (k Kind) Craftable() bool {
	return k == KindMaterial || k == KindProduct
}

// Item represents a single entry in the recipe store. IDs are assigned by the
// store on creation and are unique per kind, so (Kind, ID) is the identity.
type Item struct {
	ID             int     `json:"id" db:"id"`
	Kind           Kind    `json:"kind" db:"kind"`
	Name           string  `json:"name" db:"name"`
	OutputQuantity int     `json:"output_quantity" db:"output_quantity"` // Units yielded per craft execution; 1 for base materials
	Description    string  `json:"description,omitempty" db:"description"`
	UnitCost       float64 `json:"unit_cost,omitempty" db:"unit_cost"` // Market cost per unit; only meaningful for base materials
}

// Key returns the item's identity key.
func (i Item) Key() ItemKey {
	return ItemKey{Kind: i.Kind, ID: i.ID}
}

// ItemKey identifies an item across the three kinds.
type ItemKey struct {
	Kind Kind `json:"kind"`
	ID   int  `json:"id"`
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// RecipeRequirement is a directed edge in the recipe graph: crafting one
// execution of the recipe item consumes Quantity units of the ingredient.
type RecipeRequirement struct {
	ID             int  `json:"id" db:"id"`
	RecipeKind     Kind `json:"recipe_kind" db:"recipe_kind"`
	RecipeID       int  `json:"recipe_id" db:"recipe_id"`
	IngredientKind Kind `json:"ingredient_kind" db:"ingredient_kind"`
	IngredientID   int  `json:"ingredient_id" db:"ingredient_id"`
	Quantity       int  `json:"quantity" db:"quantity"`
}

// Ingredient returns the edge's ingredient key.
func (r RecipeRequirement) Ingredient() ItemKey {
	return ItemKey{Kind: r.IngredientKind, ID: r.IngredientID}
}

// Usage describes a recipe that consumes a given ingredient, for the
// "where is this used" view.
type Usage struct {
	RecipeKind     Kind   `json:"recipe_kind"`
	RecipeID       int    `json:"recipe_id"`
	RecipeName     string `json:"recipe_name"`
	OutputQuantity int    `json:"output_quantity"`
	QuantityNeeded int    `json:"quantity_needed"`
}

// Statistics summarizes store contents.
type Statistics struct {
	BaseMaterials int `json:"base_materials"`
	Materials     int `json:"materials"`
	Products      int `json:"products"`
	Requirements  int `json:"requirements"`
}
