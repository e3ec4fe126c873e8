package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemKeyNormalize(t *testing.T) {
	key := ItemKey{
		AssetType:       "  permanent ",
		AssetCategory:   " Office   Equipment ",
		SubCategory:     "",
		ItemName:        "Steel  Chair",
		ItemDescription: "  Revolving,   cushioned ",
	}

	n := key.Normalize()
	assert.Equal(t, AssetPermanent, n.AssetType)
	assert.Equal(t, "office equipment", n.AssetCategory)
	assert.Equal(t, "steel chair", n.ItemName)
	assert.Equal(t, "revolving, cushioned", n.ItemDescription)

	// Normalizing twice is a no-op.
	assert.Equal(t, n, n.Normalize())
}

func TestItemKeyEqualIgnoresSpelling(t *testing.T) {
	a := ItemKey{AssetType: "Permanent", AssetCategory: "Furniture", ItemName: "Table", ItemDescription: "Wooden desk"}
	b := ItemKey{AssetType: "permanent", AssetCategory: "  FURNITURE", ItemName: "table ", ItemDescription: "wooden   DESK"}
	c := ItemKey{AssetType: "Permanent", AssetCategory: "Furniture", ItemName: "Table", ItemDescription: "Steel desk"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.String(), b.String())
}

func TestItemKeyValidate(t *testing.T) {
	valid := ItemKey{AssetType: "Consumable", AssetCategory: "Stationery", ItemName: "Pen", ItemDescription: "Blue ballpoint"}
	require.NoError(t, valid.Validate())

	cases := map[string]ItemKey{
		"unknown asset type": {AssetType: "Leased", AssetCategory: "x", ItemName: "y", ItemDescription: "z"},
		"missing category":   {AssetType: "Permanent", ItemName: "y", ItemDescription: "z"},
		"missing name":       {AssetType: "Permanent", AssetCategory: "x", ItemDescription: "z"},
		"blank description":  {AssetType: "Permanent", AssetCategory: "x", ItemName: "y", ItemDescription: "   "},
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, key.Validate())
		})
	}
}

func TestAssetTypeValid(t *testing.T) {
	assert.True(t, AssetPermanent.Valid())
	assert.True(t, AssetConsumable.Valid())
	assert.False(t, AssetType("Rented").Valid())
}
