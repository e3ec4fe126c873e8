package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type stockRepo struct{ s *Store }

var _ repository.StockLedger = (*stockRepo)(nil)

func (r *stockRepo) Get(ctx context.Context, key models.ItemKey) (*models.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.stock[key.Normalize().String()]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "no stock entry for %q", key.ItemName)
	}
	return cloneStock(entry), nil
}

func (r *stockRepo) List(ctx context.Context) ([]models.StockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.StockEntry, 0, len(r.s.stock))
	for _, e := range r.s.stock {
		out = append(out, *cloneStock(e))
	}
	return out, nil
}

func (r *stockRepo) Credit(ctx context.Context, key models.ItemKey, qty int, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	entry, ok := r.s.stock[key.String()]
	if !ok {
		entry = &models.StockEntry{ID: primitive.NewObjectID(), ItemKey: key}
		if err := entry.ValidateCredit(qty, ids); err != nil {
			return err
		}
		entry.InStock = qty
		entry.ItemIDs = cloneIDs(ids)
		entry.UpdatedAt = time.Now()
		r.s.stock[key.String()] = entry
		return nil
	}

	if err := entry.ValidateCredit(qty, ids); err != nil {
		return err
	}
	entry.InStock += qty
	entry.ItemIDs = append(entry.ItemIDs, ids...)
	entry.UpdatedAt = time.Now()
	return nil
}

func (r *stockRepo) Debit(ctx context.Context, key models.ItemKey, qty int, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	entry, ok := r.s.stock[key.String()]
	if !ok {
		return apperr.New(apperr.KindNotFound, "no stock entry for %q", key.ItemName)
	}
	if err := entry.ValidateDebit(qty, ids); err != nil {
		return err
	}

	entry.InStock -= qty
	if len(ids) > 0 {
		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		kept := entry.ItemIDs[:0]
		for _, id := range entry.ItemIDs {
			if _, gone := drop[id]; !gone {
				kept = append(kept, id)
			}
		}
		entry.ItemIDs = kept
	}
	entry.UpdatedAt = time.Now()
	return nil
}
