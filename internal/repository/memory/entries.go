package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type entryRepo struct{ s *Store }

var _ repository.PendingEntries = (*entryRepo)(nil)

func (r *entryRepo) Insert(ctx context.Context, entry *models.PendingEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	cp := *entry
	r.s.entries[entry.ID] = &cp
	return nil
}

func (r *entryRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.entries[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending entry %s not found", id.Hex())
	}
	cp := *entry
	return &cp, nil
}

func (r *entryRepo) List(ctx context.Context) ([]models.PendingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.PendingEntry, 0, len(r.s.entries))
	for _, e := range r.s.entries {
		out = append(out, *e)
	}
	return out, nil
}

func (r *entryRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.entries[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending entry %s not found", id.Hex())
	}
	delete(r.s.entries, id)
	return entry, nil
}

type purchaseRepo struct{ s *Store }

var _ repository.PurchaseRecords = (*purchaseRepo)(nil)

func (r *purchaseRepo) Insert(ctx context.Context, rec *models.PurchaseRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	cp := *rec
	cp.ItemIDs = cloneIDs(rec.ItemIDs)
	r.s.purchases = append(r.s.purchases, &cp)
	return nil
}

func (r *purchaseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, p := range r.s.purchases {
		if p.ID == id {
			r.s.purchases = append(r.s.purchases[:i], r.s.purchases[i+1:]...)
			return nil
		}
	}
	return apperr.New(apperr.KindNotFound, "purchase record %s not found", id.Hex())
}

func (r *purchaseRepo) ListByKey(ctx context.Context, key models.ItemKey) ([]models.PurchaseRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	var out []models.PurchaseRecord
	for _, p := range r.s.purchases {
		if p.ItemKey == key {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *purchaseRepo) SumQuantity(ctx context.Context, key models.ItemKey) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	total := 0
	for _, p := range r.s.purchases {
		if p.ItemKey == key {
			total += p.QuantityReceived
		}
	}
	return total, nil
}
