package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type servicedRepo struct{ s *Store }

var _ repository.ServicedAssets = (*servicedRepo)(nil)

func (r *servicedRepo) InsertPending(ctx context.Context, sa *models.ServicedAsset) error {
	if sa.ID.IsZero() {
		sa.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collServiced).InsertOne(ctx, sa); err != nil {
		return fmt.Errorf("failed to insert serviced asset: %w", err)
	}
	return nil
}

func (r *servicedRepo) GetPending(ctx context.Context, id primitive.ObjectID) (*models.ServicedAsset, error) {
	var sa models.ServicedAsset
	err := r.s.coll(collServiced).FindOne(ctx, bson.M{"_id": id}).Decode(&sa)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "serviced asset %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load serviced asset: %w", err)
	}
	return &sa, nil
}

func (r *servicedRepo) ListPending(ctx context.Context) ([]models.ServicedAsset, error) {
	cur, err := r.s.coll(collServiced).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list serviced assets: %w", err)
	}
	var out []models.ServicedAsset
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode serviced assets: %w", err)
	}
	return out, nil
}

func (r *servicedRepo) TakePending(ctx context.Context, id primitive.ObjectID) (*models.ServicedAsset, error) {
	var sa models.ServicedAsset
	err := r.s.coll(collServiced).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&sa)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "serviced asset %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take serviced asset: %w", err)
	}
	return &sa, nil
}

func (r *servicedRepo) SumPending(ctx context.Context, key models.ItemKey) (int, error) {
	cur, err := r.s.coll(collServiced).Find(ctx, keyFilter(key))
	if err != nil {
		return 0, fmt.Errorf("failed to sum serviced assets: %w", err)
	}
	var recs []models.ServicedAsset
	if err := cur.All(ctx, &recs); err != nil {
		return 0, fmt.Errorf("failed to decode serviced assets: %w", err)
	}
	total := 0
	for _, sa := range recs {
		total += sa.Quantity
	}
	return total, nil
}

func (r *servicedRepo) InsertHistory(ctx context.Context, h *models.ServiceHistory) error {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collHistory).InsertOne(ctx, h); err != nil {
		return fmt.Errorf("failed to insert service history: %w", err)
	}
	return nil
}

func (r *servicedRepo) ListHistory(ctx context.Context, key models.ItemKey) ([]models.ServiceHistory, error) {
	cur, err := r.s.coll(collHistory).Find(ctx, keyFilter(key))
	if err != nil {
		return nil, fmt.Errorf("failed to list service history: %w", err)
	}
	var out []models.ServiceHistory
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode service history: %w", err)
	}
	return out, nil
}

type exchangeRepo struct{ s *Store }

var _ repository.Exchanges = (*exchangeRepo)(nil)

func (r *exchangeRepo) Insert(ctx context.Context, ex *models.ExchangedConsumable) error {
	if ex.ID.IsZero() {
		ex.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collExchanges).InsertOne(ctx, ex); err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

func (r *exchangeRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.ExchangedConsumable, error) {
	var ex models.ExchangedConsumable
	err := r.s.coll(collExchanges).FindOne(ctx, bson.M{"_id": id}).Decode(&ex)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "exchange %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange: %w", err)
	}
	return &ex, nil
}

func (r *exchangeRepo) List(ctx context.Context) ([]models.ExchangedConsumable, error) {
	cur, err := r.s.coll(collExchanges).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	var out []models.ExchangedConsumable
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode exchanges: %w", err)
	}
	return out, nil
}

func (r *exchangeRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.ExchangedConsumable, error) {
	var ex models.ExchangedConsumable
	err := r.s.coll(collExchanges).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&ex)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "exchange %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take exchange: %w", err)
	}
	return &ex, nil
}

type disposalRepo struct{ s *Store }

var _ repository.PendingDisposals = (*disposalRepo)(nil)

func (r *disposalRepo) Insert(ctx context.Context, pd *models.PendingDisposal) error {
	if pd.ID.IsZero() {
		pd.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collDisposals).InsertOne(ctx, pd); err != nil {
		return fmt.Errorf("failed to insert pending disposal: %w", err)
	}
	return nil
}

func (r *disposalRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error) {
	var pd models.PendingDisposal
	err := r.s.coll(collDisposals).FindOne(ctx, bson.M{"_id": id}).Decode(&pd)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "pending disposal %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending disposal: %w", err)
	}
	return &pd, nil
}

func (r *disposalRepo) List(ctx context.Context) ([]models.PendingDisposal, error) {
	cur, err := r.s.coll(collDisposals).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending disposals: %w", err)
	}
	var out []models.PendingDisposal
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pending disposals: %w", err)
	}
	return out, nil
}

func (r *disposalRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error) {
	var pd models.PendingDisposal
	err := r.s.coll(collDisposals).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&pd)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "pending disposal %s not found", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take pending disposal: %w", err)
	}
	return &pd, nil
}

type disposedRepo struct{ s *Store }

var _ repository.DisposedAssets = (*disposedRepo)(nil)

func (r *disposedRepo) Insert(ctx context.Context, da *models.DisposedAsset) error {
	if da.ID.IsZero() {
		da.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collDisposed).InsertOne(ctx, da); err != nil {
		return fmt.Errorf("failed to insert disposed asset: %w", err)
	}
	return nil
}

func (r *disposedRepo) List(ctx context.Context) ([]models.DisposedAsset, error) {
	cur, err := r.s.coll(collDisposed).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list disposed assets: %w", err)
	}
	var out []models.DisposedAsset
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode disposed assets: %w", err)
	}
	return out, nil
}

func (r *disposedRepo) SumQuantity(ctx context.Context, key models.ItemKey) (int, error) {
	cur, err := r.s.coll(collDisposed).Find(ctx, keyFilter(key))
	if err != nil {
		return 0, fmt.Errorf("failed to sum disposed assets: %w", err)
	}
	var recs []models.DisposedAsset
	if err := cur.All(ctx, &recs); err != nil {
		return 0, fmt.Errorf("failed to decode disposed assets: %w", err)
	}
	total := 0
	for _, da := range recs {
		if da.AssetType == models.AssetPermanent {
			total += len(da.ItemIDs)
		} else {
			total += da.Quantity
		}
	}
	return total, nil
}

type deadStockRepo struct{ s *Store }

var _ repository.DeadStock = (*deadStockRepo)(nil)

func (r *deadStockRepo) Get(ctx context.Context, key models.ItemKey) (*models.DeadStockEntry, error) {
	var entry models.DeadStockEntry
	err := r.s.coll(collDeadStock).FindOne(ctx, keyFilter(key)).Decode(&entry)
	if isNoDocuments(err) {
		return nil, apperr.New(apperr.KindNotFound, "no dead stock entry for %q", key.ItemName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dead stock entry: %w", err)
	}
	return &entry, nil
}

func (r *deadStockRepo) List(ctx context.Context) ([]models.DeadStockEntry, error) {
	cur, err := r.s.coll(collDeadStock).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list dead stock register: %w", err)
	}
	var out []models.DeadStockEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode dead stock register: %w", err)
	}
	return out, nil
}

func (r *deadStockRepo) Upsert(ctx context.Context, entry *models.DeadStockEntry) error {
	entry.ItemKey = entry.ItemKey.Normalize()
	entry.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"overallQuantity":    entry.OverallQuantity,
		"servicableQuantity": entry.ServicableQuantity,
		"condemnedQuantity":  entry.CondemnedQuantity,
		"updatedAt":          entry.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.s.coll(collDeadStock).UpdateOne(ctx, keyFilter(entry.ItemKey), update, opts); err != nil {
		return fmt.Errorf("failed to upsert dead stock entry: %w", err)
	}
	return nil
}

func (r *deadStockRepo) IncrementCondemned(ctx context.Context, key models.ItemKey, qty int) error {
	res, err := r.s.coll(collDeadStock).UpdateOne(ctx, keyFilter(key),
		bson.M{"$inc": bson.M{"condemnedQuantity": qty}, "$set": bson.M{"updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to increment condemned count: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "no dead stock entry for %q", key.ItemName)
	}
	return nil
}

// SetComputed is last-write-wins: the repair sweep derives the counts from
// the source collections, so the newest computation is the right one.
func (r *deadStockRepo) SetComputed(ctx context.Context, key models.ItemKey, overall, servicable, condemned int) error {
	res, err := r.s.coll(collDeadStock).UpdateOne(ctx, keyFilter(key),
		bson.M{"$set": bson.M{
			"overallQuantity":    overall,
			"servicableQuantity": servicable,
			"condemnedQuantity":  condemned,
			"updatedAt":          time.Now(),
		}})
	if err != nil {
		return fmt.Errorf("failed to write computed dead stock entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.KindNotFound, "no dead stock entry for %q", key.ItemName)
	}
	return nil
}

type rejectionRepo struct{ s *Store }

var _ repository.RejectionSink = (*rejectionRepo)(nil)

func (r *rejectionRepo) Insert(ctx context.Context, rej *models.RejectedAsset) error {
	if rej.ID.IsZero() {
		rej.ID = primitive.NewObjectID()
	}
	if _, err := r.s.coll(collRejections).InsertOne(ctx, rej); err != nil {
		return fmt.Errorf("failed to insert rejection: %w", err)
	}
	return nil
}

func (r *rejectionRepo) List(ctx context.Context) ([]models.RejectedAsset, error) {
	cur, err := r.s.coll(collRejections).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list rejections: %w", err)
	}
	var out []models.RejectedAsset
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode rejections: %w", err)
	}
	return out, nil
}

type unitIDRepo struct{ s *Store }

var _ repository.UnitIDs = (*unitIDRepo)(nil)

// FindExisting queries every collection that may currently hold a Permanent
// unit. Purchase records are excluded: they keep minted ids forever as
// history.
func (r *unitIDRepo) FindExisting(ctx context.Context, ids []string) ([]string, error) {
	found := make(map[string]struct{})

	queries := []struct {
		coll  string
		field string
	}{
		{collStock, "itemIds"},
		{collIssues, "issuedIds"},
		{collIssued, "issues.issuedIds"},
		{collReturns, "itemId"},
		{collServiced, "itemIds"},
		{collDisposed, "itemIds"},
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	for _, q := range queries {
		cur, err := r.s.coll(q.coll).Find(ctx, bson.M{q.field: bson.M{"$in": ids}})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s for unit ids: %w", q.coll, err)
		}
		var docs []bson.M
		if err := cur.All(ctx, &docs); err != nil {
			return nil, fmt.Errorf("failed to decode %s unit id scan: %w", q.coll, err)
		}
		path := strings.Split(q.field, ".")
		for _, doc := range docs {
			markIDs(doc, path, want, found)
		}
	}

	out := make([]string, 0, len(found))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// markIDs records wanted identifiers found at the given field path. Only the
// named field is inspected, so an unrelated string elsewhere in the document
// never counts as a unit id. Arrays along the path are fanned through without
// consuming a path segment.
func markIDs(v any, path []string, want, found map[string]struct{}) {
	switch val := v.(type) {
	case bson.M:
		if len(path) == 0 {
			return
		}
		markIDs(val[path[0]], path[1:], want, found)
	case bson.A:
		for _, inner := range val {
			markIDs(inner, path, want, found)
		}
	case []any:
		for _, inner := range val {
			markIDs(inner, path, want, found)
		}
	case string:
		if len(path) != 0 {
			return
		}
		if _, ok := want[val]; ok {
			found[val] = struct{}{}
		}
	}
}
