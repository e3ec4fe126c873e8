package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
)

// StockEntry is the per-item-key line of the stock ledger. For Permanent
// assets the invariant |ItemIDs| == InStock holds at all times; for
// Consumable assets ItemIDs is empty.
type StockEntry struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	InStock   int       `bson:"inStock" json:"inStock"`
	ItemIDs   []string  `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidateDebit checks the business rules for removing qty units (and, for
// Permanent, the given ids) from the entry, without mutating it.
func (e *StockEntry) ValidateDebit(qty int, ids []string) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "debit quantity must be positive, got %d", qty)
	}
	if qty > e.InStock {
		return apperr.New(apperr.KindInsufficientStock, "requested %d of %q but only %d in stock", qty, e.ItemName, e.InStock)
	}
	if e.AssetType == AssetPermanent {
		if len(ids) != qty {
			return apperr.New(apperr.KindInvalidIdentifierSet, "permanent debit needs %d item ids, got %d", qty, len(ids))
		}
		have := make(map[string]struct{}, len(e.ItemIDs))
		for _, id := range e.ItemIDs {
			have[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := have[id]; !ok {
				return apperr.New(apperr.KindInvalidIdentifierSet, "item id %q is not in stock for %q", id, e.ItemName)
			}
		}
	} else if len(ids) != 0 {
		return apperr.New(apperr.KindInvalidIdentifierSet, "consumable debit must not carry item ids")
	}
	return nil
}

// ValidateCredit checks the rules for adding qty units (and ids) to the
// entry. A duplicate id signals a reconciliation bug upstream and is
// surfaced, never silently unioned.
func (e *StockEntry) ValidateCredit(qty int, ids []string) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "credit quantity must be positive, got %d", qty)
	}
	if e.AssetType == AssetPermanent {
		if len(ids) != qty {
			return apperr.New(apperr.KindInvalidIdentifierSet, "permanent credit needs %d item ids, got %d", qty, len(ids))
		}
		have := make(map[string]struct{}, len(e.ItemIDs))
		for _, id := range e.ItemIDs {
			have[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := have[id]; ok {
				return apperr.New(apperr.KindDuplicateIdentifier, "item id %q already present in stock for %q", id, e.ItemName)
			}
		}
	} else if len(ids) != 0 {
		return apperr.New(apperr.KindInvalidIdentifierSet, "consumable credit must not carry item ids")
	}
	return nil
}

// ValidateIDSet rejects id lists with internal duplicates or blanks.
func ValidateIDSet(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return apperr.New(apperr.KindInvalidIdentifierSet, "item id must not be empty")
		}
		if _, ok := seen[id]; ok {
			return apperr.New(apperr.KindInvalidIdentifierSet, "item id %q repeated in request", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
