package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"base", "material", "product"} {
		kind, err := ParseKind(valid)
		require.NoError(t, err)
		assert.Equal(t, Kind(valid), kind)
	}

	for _, invalid := range []string{"", "Base", "weapon", " material"} {
		_, err := ParseKind(invalid)
		assert.ErrorIs(t, err, ErrInvalidKind, "%q", invalid)
	}
}

func TestKindCraftable(t *testing.T) {
	assert.False(t, KindBase.Craftable())
	assert.True(t, KindMaterial.Craftable())
	assert.True(t, KindProduct.Craftable())
}

func TestItemKeyString(t *testing.T) {
	key := ItemKey{Kind: KindMaterial, ID: 7}
	assert.Equal(t, "material:7", key.String())
}

func TestRequirementIngredient(t *testing.T) {
	req := RecipeRequirement{
		RecipeKind: KindProduct, RecipeID: 1,
		IngredientKind: KindBase, IngredientID: 3, Quantity: 2,
	}
	assert.Equal(t, ItemKey{Kind: KindBase, ID: 3}, req.Ingredient())
}
