package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type stockRepo struct{ s *Store }

var _ repository.StockLedger = (*stockRepo)(nil)

func (r *stockRepo) Get(ctx context.Context, key models.ItemKey) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := r.s.coll(collStock).FindOne(ctx, keyFilter(key)).Decode(&entry)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "no stock entry for %q", key.ItemName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stock entry: %w", err)
	}
	return &entry, nil
}

func (r *stockRepo) List(ctx context.Context) ([]models.StockEntry, error) {
	cur, err := r.s.coll(collStock).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	var out []models.StockEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode stock: %w", err)
	}
	return out, nil
}

// Credit adds units to the ledger, creating the stock line on first sight.
// The update is conditional on the counters read during validation, so a
// concurrent mutation surfaces as a precondition failure instead of a
// silently merged write.
func (r *stockRepo) Credit(ctx context.Context, key models.ItemKey, qty int, ids []string) error {
	entry, err := r.Get(ctx, key)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return r.create(ctx, key, qty, ids)
	}
	if err != nil {
		return err
	}
	if err := entry.ValidateCredit(qty, ids); err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"inStock": qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	if len(ids) > 0 {
		update["$push"] = bson.M{"itemIds": bson.M{"$each": ids}}
	}
	res, err := r.s.coll(collStock).UpdateOne(ctx,
		bson.M{"_id": entry.ID, "inStock": entry.InStock}, update)
	if err != nil {
		return fmt.Errorf("failed to credit stock: %w", err)
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.KindPreconditionFailed, "stock for %q changed concurrently", key.ItemName)
	}
	return nil
}

// Debit removes units from the ledger after full validation; like Credit the
// write is conditional on the counter read.
func (r *stockRepo) Debit(ctx context.Context, key models.ItemKey, qty int, ids []string) error {
	entry, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := entry.ValidateDebit(qty, ids); err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"inStock": -qty},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	if len(ids) > 0 {
		update["$pull"] = bson.M{"itemIds": bson.M{"$in": ids}}
	}
	res, err := r.s.coll(collStock).UpdateOne(ctx,
		bson.M{"_id": entry.ID, "inStock": entry.InStock}, update)
	if err != nil {
		return fmt.Errorf("failed to debit stock: %w", err)
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.KindPreconditionFailed, "stock for %q changed concurrently", key.ItemName)
	}
	return nil
}

func (r *stockRepo) create(ctx context.Context, key models.ItemKey, qty int, ids []string) error {
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "credit quantity must be positive")
	}
	if key.AssetType == models.AssetPermanent && len(ids) != qty {
		return apperr.New(apperr.KindInvalidIdentifierSet, "%d unit ids for quantity %d", len(ids), qty)
	}
	if key.AssetType == models.AssetConsumable && len(ids) != 0 {
		return apperr.New(apperr.KindInvalidIdentifierSet, "consumable stock must not carry unit ids")
	}
	entry := models.StockEntry{
		ItemKey:   key.Normalize(),
		InStock:   qty,
		ItemIDs:   ids,
		UpdatedAt: time.Now(),
	}
	if _, err := r.s.coll(collStock).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to create stock entry: %w", err)
	}
	return nil
}
