package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
)

func permanentEntry(inStock int, ids ...string) *StockEntry {
	return &StockEntry{
		ItemKey: ItemKey{AssetType: AssetPermanent, AssetCategory: "furniture", ItemName: "chair", ItemDescription: "steel"},
		InStock: inStock,
		ItemIDs: ids,
	}
}

func consumableEntry(inStock int) *StockEntry {
	return &StockEntry{
		ItemKey: ItemKey{AssetType: AssetConsumable, AssetCategory: "stationery", ItemName: "pen", ItemDescription: "blue"},
		InStock: inStock,
	}
}

func TestValidateDebit(t *testing.T) {
	e := permanentEntry(2, "CH-1", "CH-2")

	assert.NoError(t, e.ValidateDebit(1, []string{"CH-1"}))
	assert.NoError(t, e.ValidateDebit(2, []string{"CH-1", "CH-2"}))

	assert.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(e.ValidateDebit(0, nil)))
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(e.ValidateDebit(3, []string{"CH-1", "CH-2", "CH-3"})))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(e.ValidateDebit(2, []string{"CH-1"})))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(e.ValidateDebit(1, []string{"CH-9"})))

	c := consumableEntry(10)
	assert.NoError(t, c.ValidateDebit(4, nil))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(c.ValidateDebit(1, []string{"X"})))
}

func TestValidateCredit(t *testing.T) {
	e := permanentEntry(1, "CH-1")

	assert.NoError(t, e.ValidateCredit(1, []string{"CH-2"}))
	assert.Equal(t, apperr.KindDuplicateIdentifier, apperr.KindOf(e.ValidateCredit(1, []string{"CH-1"})))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(e.ValidateCredit(2, []string{"CH-2"})))
	assert.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(e.ValidateCredit(0, nil)))

	c := consumableEntry(0)
	assert.NoError(t, c.ValidateCredit(5, nil))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(c.ValidateCredit(1, []string{"X"})))
}

func TestValidateIDSet(t *testing.T) {
	assert.NoError(t, ValidateIDSet(nil))
	assert.NoError(t, ValidateIDSet([]string{"A", "B"}))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(ValidateIDSet([]string{"A", ""})))
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(ValidateIDSet([]string{"A", "A"})))
}
