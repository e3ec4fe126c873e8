package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type returnRepo struct{ s *Store }

var _ repository.ReturnedRecords = (*returnRepo)(nil)

func (r *returnRepo) Insert(ctx context.Context, rec *models.ReturnedRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collReturns).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert returned record: %w", err)
	}
	return nil
}

func (r *returnRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error) {
	var rec models.ReturnedRecord
	err := r.s.coll(collReturns).FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "returned record %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load returned record: %w", err)
	}
	return &rec, nil
}

func (r *returnRepo) List(ctx context.Context) ([]models.ReturnedRecord, error) {
	return r.find(ctx, bson.M{})
}

func (r *returnRepo) ListByState(ctx context.Context, state models.ReturnState) ([]models.ReturnedRecord, error) {
	return r.find(ctx, bson.M{"state": state})
}

// Transition flips the state only when the record is still in the expected
// one; the filter is the serialization point for racing approvals.
func (r *returnRepo) Transition(ctx context.Context, id primitive.ObjectID, from, to models.ReturnState) (*models.ReturnedRecord, error) {
	return r.conditionalUpdate(ctx, id, from,
		bson.M{"$set": bson.M{"state": to, "updatedAt": time.Now()}})
}

// MarkServiceRejected flips an in-service record out of the shop and flags it
// as having failed service at least once.
func (r *returnRepo) MarkServiceRejected(ctx context.Context, id primitive.ObjectID, to models.ReturnState) (*models.ReturnedRecord, error) {
	return r.conditionalUpdate(ctx, id, models.ReturnServicePending,
		bson.M{"$set": bson.M{"state": to, "servicedRejected": true, "updatedAt": time.Now()}})
}

// Unlock releases the disposal soft lock back into the eligible pool, flagged
// so the record's history shows the refused disposal.
func (r *returnRepo) Unlock(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error) {
	return r.conditionalUpdate(ctx, id, models.ReturnDisposeLocked,
		bson.M{"$set": bson.M{"state": models.ReturnDisposeEligible, "rejectedDisposal": true, "updatedAt": time.Now()}})
}

func (r *returnRepo) Delete(ctx context.Context, id primitive.ObjectID, expect models.ReturnState) (*models.ReturnedRecord, error) {
	var rec models.ReturnedRecord
	err := r.s.coll(collReturns).FindOneAndDelete(ctx,
		bson.M{"_id": id, "state": expect}).Decode(&rec)
	if isNoDocuments(err) {
		return nil, r.classify(ctx, id, expect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete returned record: %w", err)
	}
	return &rec, nil
}

func (r *returnRepo) ListByIDs(ctx context.Context, key models.ItemKey, ids []string, state models.ReturnState) ([]models.ReturnedRecord, error) {
	filter := keyFilter(key)
	filter["state"] = state
	filter["itemId"] = bson.M{"$in": ids}
	return r.find(ctx, filter)
}

func (r *returnRepo) SumInService(ctx context.Context, key models.ItemKey) (int, error) {
	filter := keyFilter(key)
	filter["state"] = bson.M{"$in": bson.A{models.ReturnServiceApproved, models.ReturnServicePending}}
	recs, err := r.find(ctx, filter)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, rec := range recs {
		total += rec.Units()
	}
	return total, nil
}

func (r *returnRepo) find(ctx context.Context, filter bson.M) ([]models.ReturnedRecord, error) {
	cur, err := r.s.coll(collReturns).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list returned records: %w", err)
	}
	var out []models.ReturnedRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode returned records: %w", err)
	}
	return out, nil
}

func (r *returnRepo) conditionalUpdate(ctx context.Context, id primitive.ObjectID, from models.ReturnState, update bson.M) (*models.ReturnedRecord, error) {
	var rec models.ReturnedRecord
	err := r.s.coll(collReturns).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "state": from}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&rec)
	if isNoDocuments(err) {
		return nil, r.classify(ctx, id, from)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update returned record: %w", err)
	}
	return &rec, nil
}

// classify turns a missed conditional write into not-found or
// precondition-failed by re-reading the document.
func (r *returnRepo) classify(ctx context.Context, id primitive.ObjectID, expect models.ReturnState) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return apperr.New(apperr.KindPreconditionFailed, "returned record %s is %s, expected %s", id.Hex(), rec.State, expect)
}

type storeReturnRepo struct{ s *Store }

var _ repository.StoreReturns = (*storeReturnRepo)(nil)

func (r *storeReturnRepo) Insert(ctx context.Context, sr *models.StoreReturn) error {
	if sr.ID.IsZero() {
		sr.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collStoreReturns).InsertOne(ctx, sr); err != nil {
		return fmt.Errorf("failed to insert store return: %w", err)
	}
	return nil
}

func (r *storeReturnRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.StoreReturn, error) {
	var sr models.StoreReturn
	err := r.s.coll(collStoreReturns).FindOne(ctx, bson.M{"_id": id}).Decode(&sr)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "store return %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store return: %w", err)
	}
	return &sr, nil
}

func (r *storeReturnRepo) List(ctx context.Context) ([]models.StoreReturn, error) {
	cur, err := r.s.coll(collStoreReturns).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list store returns: %w", err)
	}
	var out []models.StoreReturn
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode store returns: %w", err)
	}
	return out, nil
}

func (r *storeReturnRepo) SetReceipt(ctx context.Context, id primitive.ObjectID, receiptURL string) error {
	res, err := r.s.coll(collStoreReturns).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"receiptUrl": receiptURL}})
	if err != nil {
		return fmt.Errorf("failed to set store return receipt: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "store return %s not found", id.Hex())
	}
	return nil
}
