package models

import (
	"fmt"
	"strings"
)

// AssetType distinguishes serialized assets from fungible ones.
type AssetType string

const (
	// AssetPermanent is tracked by unique per-unit identifiers.
	AssetPermanent AssetType = "Permanent"
	// AssetConsumable is tracked by an integer quantity.
	AssetConsumable AssetType = "Consumable"
)

// Valid reports whether t is one of the two supported asset types.
func (t AssetType) Valid() bool {
	return t == AssetPermanent || t == AssetConsumable
}

// ItemKey is the composite natural key identifying one stock line. Every
// collection in the engine is keyed by this tuple; it carries no surrogate
// identity of its own. All comparisons go through Normalize so that
// differently-spelled descriptions cannot silently fork a stock line.
type ItemKey struct {
	AssetType       AssetType `bson:"assetType" json:"assetType" form:"assetType" binding:"required"`
	AssetCategory   string    `bson:"assetCategory" json:"assetCategory" form:"assetCategory" binding:"required"`
	SubCategory     string    `bson:"subCategory,omitempty" json:"subCategory,omitempty" form:"subCategory"`
	ItemName        string    `bson:"itemName" json:"itemName" form:"itemName" binding:"required"`
	ItemDescription string    `bson:"itemDescription" json:"itemDescription" form:"itemDescription" binding:"required"`
}

// Normalize returns the canonical form of the key: fields trimmed, inner
// whitespace collapsed and lowercased. Every component must normalize before
// touching storage; this is the single canonicalization point for the system.
func (k ItemKey) Normalize() ItemKey {
	return ItemKey{
		AssetType:       normalizeAssetType(k.AssetType),
		AssetCategory:   canonical(k.AssetCategory),
		SubCategory:     canonical(k.SubCategory),
		ItemName:        canonical(k.ItemName),
		ItemDescription: canonical(k.ItemDescription),
	}
}

// Validate checks that the key names a usable stock line.
func (k ItemKey) Validate() error {
	if !normalizeAssetType(k.AssetType).Valid() {
		return fmt.Errorf("unknown asset type %q", k.AssetType)
	}
	if canonical(k.AssetCategory) == "" {
		return fmt.Errorf("asset category is required")
	}
	if canonical(k.ItemName) == "" {
		return fmt.Errorf("item name is required")
	}
	if canonical(k.ItemDescription) == "" {
		return fmt.Errorf("item description is required")
	}
	return nil
}

// Equal compares two keys in canonical form.
func (k ItemKey) Equal(other ItemKey) bool {
	return k.Normalize() == other.Normalize()
}

// String renders the canonical key, usable as a map key.
func (k ItemKey) String() string {
	n := k.Normalize()
	return strings.Join([]string{string(n.AssetType), n.AssetCategory, n.SubCategory, n.ItemName, n.ItemDescription}, "|")
}

func canonical(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func normalizeAssetType(t AssetType) AssetType {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "permanent":
		return AssetPermanent
	case "consumable":
		return AssetConsumable
	default:
		return AssetType(strings.TrimSpace(string(t)))
	}
}
