package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type issueRepo struct{ s *Store }

var _ repository.PendingIssues = (*issueRepo)(nil)

func (r *issueRepo) Insert(ctx context.Context, issue *models.PendingIssue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collIssues).InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("failed to insert pending issue: %w", err)
	}
	return nil
}

func (r *issueRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	var issue models.PendingIssue
	err := r.s.coll(collIssues).FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending issue: %w", err)
	}
	return &issue, nil
}

func (r *issueRepo) List(ctx context.Context) ([]models.PendingIssue, error) {
	cur, err := r.s.coll(collIssues).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending issues: %w", err)
	}
	var out []models.PendingIssue
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pending issues: %w", err)
	}
	return out, nil
}

// Acknowledge overwrites any previous receipt; re-signing is not an error.
func (r *issueRepo) Acknowledge(ctx context.Context, id primitive.ObjectID, receiptURL string) error {
	res, err := r.s.coll(collIssues).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"acknowledged": true, "receiptUrl": receiptURL}})
	if err != nil {
		return fmt.Errorf("failed to acknowledge issue: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	return nil
}

// TakeAcknowledged removes the issue only when countersigned, distinguishing
// an unacknowledged issue from one already resolved.
func (r *issueRepo) TakeAcknowledged(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	var issue models.PendingIssue
	err := r.s.coll(collIssues).FindOneAndDelete(ctx,
		bson.M{"_id": id, "acknowledged": true}).Decode(&issue)
	if isNoDocuments(err) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.New(apperr.KindPreconditionFailed, "pending issue %s has no signed receipt", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take acknowledged issue: %w", err)
	}
	return &issue, nil
}

func (r *issueRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	var issue models.PendingIssue
	err := r.s.coll(collIssues).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&issue)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take pending issue: %w", err)
	}
	return &issue, nil
}

type issuedRepo struct{ s *Store }

var _ repository.IssuedRecords = (*issuedRepo)(nil)

func (r *issuedRepo) Get(ctx context.Context, key models.ItemKey) (*models.IssuedRecord, error) {
	var rec models.IssuedRecord
	err := r.s.coll(collIssued).FindOne(ctx, keyFilter(key)).Decode(&rec)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "no issued record for %q", key.ItemName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load issued record: %w", err)
	}
	return &rec, nil
}

func (r *issuedRepo) List(ctx context.Context) ([]models.IssuedRecord, error) {
	cur, err := r.s.coll(collIssued).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list issued records: %w", err)
	}
	var out []models.IssuedRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode issued records: %w", err)
	}
	return out, nil
}

// Merge folds an approved issue into the per-key record, accumulating onto an
// existing line for the same location. The replace is conditional on the
// record's last update time.
func (r *issuedRepo) Merge(ctx context.Context, key models.ItemKey, line models.IssueLine) error {
	rec, err := r.Get(ctx, key)
	if apperr.IsKind(err, apperr.KindNotFound) {
		rec = &models.IssuedRecord{
			ItemKey:   key.Normalize(),
			Issues:    []models.IssueLine{line},
			UpdatedAt: time.Now(),
		}
		rec.ID = primitive.NewObjectID()
		if _, err := r.s.coll(collIssued).InsertOne(ctx, rec); err != nil {
			return fmt.Errorf("failed to insert issued record: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if existing := rec.Line(line.IssuedTo); existing != nil {
		existing.Quantity += line.Quantity
		existing.IssuedIDs = append(existing.IssuedIDs, line.IssuedIDs...)
		existing.IssuedDate = line.IssuedDate
	} else {
		rec.Issues = append(rec.Issues, line)
	}
	return r.replace(ctx, rec)
}

// Debit consumes outstanding quantity (and ids for Permanent) from one
// location's line, dropping the line at zero and the record when empty.
func (r *issuedRepo) Debit(ctx context.Context, key models.ItemKey, issuedTo string, qty int, ids []string) error {
	rec, err := r.Get(ctx, key)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return apperr.New(apperr.KindNotFound, "nothing issued for %q", key.ItemName)
	}
	if err != nil {
		return err
	}

	line := rec.Line(issuedTo)
	if line == nil {
		return apperr.New(apperr.KindNotFound, "nothing issued to %q for %q", issuedTo, key.ItemName)
	}
	if qty <= 0 || qty > line.Quantity {
		return apperr.New(apperr.KindInvalidQuantity, "cannot take %d of %d issued to %q", qty, line.Quantity, issuedTo)
	}
	if key.AssetType == models.AssetPermanent {
		if len(ids) != qty {
			return apperr.New(apperr.KindInvalidIdentifierSet, "%d unit ids for quantity %d", len(ids), qty)
		}
		held := make(map[string]struct{}, len(line.IssuedIDs))
		for _, id := range line.IssuedIDs {
			held[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := held[id]; !ok {
				return apperr.New(apperr.KindInvalidIdentifierSet, "item id %q is not issued to %q", id, issuedTo)
			}
		}
		remove := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			remove[id] = struct{}{}
		}
		kept := line.IssuedIDs[:0]
		for _, id := range line.IssuedIDs {
			if _, gone := remove[id]; !gone {
				kept = append(kept, id)
			}
		}
		line.IssuedIDs = kept
	} else if len(ids) != 0 {
		return apperr.New(apperr.KindInvalidIdentifierSet, "consumable debit must not carry unit ids")
	}
	line.Quantity -= qty

	remaining := rec.Issues[:0]
	for i := range rec.Issues {
		if rec.Issues[i].Quantity > 0 {
			remaining = append(remaining, rec.Issues[i])
		}
	}
	rec.Issues = remaining

	if len(rec.Issues) == 0 {
		res, err := r.s.coll(collIssued).DeleteOne(ctx,
			bson.M{"_id": rec.ID, "updatedAt": rec.UpdatedAt})
		if err != nil {
			return fmt.Errorf("failed to delete issued record: %w", err)
		}
		if res.DeletedCount == 0 {
			return apperr.New(apperr.KindPreconditionFailed, "issued record for %q changed concurrently", key.ItemName)
		}
		return nil
	}
	return r.replace(ctx, rec)
}

func (r *issuedRepo) replace(ctx context.Context, rec *models.IssuedRecord) error {
	prev := rec.UpdatedAt
	rec.UpdatedAt = time.Now()
	res, err := r.s.coll(collIssued).ReplaceOne(ctx,
		bson.M{"_id": rec.ID, "updatedAt": prev}, rec)
	if err != nil {
		return fmt.Errorf("failed to update issued record: %w", err)
	}
	if res.ModifiedCount == 0 {
		return apperr.New(apperr.KindPreconditionFailed, "issued record for %q changed concurrently", rec.ItemName)
	}
	return nil
}
