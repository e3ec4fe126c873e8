package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type entryRepo struct{ s *Store }

var _ repository.PendingEntries = (*entryRepo)(nil)

func (r *entryRepo) Insert(ctx context.Context, entry *models.PendingEntry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collEntries).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert pending entry: %w", err)
	}
	return nil
}

func (r *entryRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error) {
	var entry models.PendingEntry
	err := r.s.coll(collEntries).FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "pending entry %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending entry: %w", err)
	}
	return &entry, nil
}

func (r *entryRepo) List(ctx context.Context) ([]models.PendingEntry, error) {
	cur, err := r.s.coll(collEntries).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	var out []models.PendingEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pending entries: %w", err)
	}
	return out, nil
}

// Take removes and returns the entry in one round trip. Two racing approvals
// both reach here; only one gets a document back.
func (r *entryRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error) {
	var entry models.PendingEntry
	err := r.s.coll(collEntries).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&entry)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "pending entry %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take pending entry: %w", err)
	}
	return &entry, nil
}

type purchaseRepo struct{ s *Store }

var _ repository.PurchaseRecords = (*purchaseRepo)(nil)

func (r *purchaseRepo) Insert(ctx context.Context, rec *models.PurchaseRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collPurchases).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert purchase record: %w", err)
	}
	return nil
}

func (r *purchaseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.s.coll(collPurchases).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete purchase record: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.KindNotFound, "purchase record %s not found", id.Hex())
	}
	return nil
}

func (r *purchaseRepo) ListByKey(ctx context.Context, key models.ItemKey) ([]models.PurchaseRecord, error) {
	cur, err := r.s.coll(collPurchases).Find(ctx, keyFilter(key))
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase records: %w", err)
	}
	var out []models.PurchaseRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode purchase records: %w", err)
	}
	return out, nil
}

func (r *purchaseRepo) SumQuantity(ctx context.Context, key models.ItemKey) (int, error) {
	recs, err := r.ListByKey(ctx, key)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, rec := range recs {
		total += rec.QuantityReceived
	}
	return total, nil
}
