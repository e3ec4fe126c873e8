package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type servicedRepo struct{ s *Store }

var _ repository.ServicedAssets = (*servicedRepo)(nil)

func (r *servicedRepo) InsertPending(ctx context.Context, sa *models.ServicedAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sa.ID.IsZero() {
		sa.ID = primitive.NewObjectID()
	}
	cp := *sa
	cp.ItemIDs = cloneIDs(sa.ItemIDs)
	r.s.serviced[sa.ID] = &cp
	return nil
}

func (r *servicedRepo) GetPending(ctx context.Context, id primitive.ObjectID) (*models.ServicedAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sa, ok := r.s.serviced[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "serviced asset %s not found", id.Hex())
	}
	cp := *sa
	return &cp, nil
}

func (r *servicedRepo) ListPending(ctx context.Context) ([]models.ServicedAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.ServicedAsset, 0, len(r.s.serviced))
	for _, sa := range r.s.serviced {
		out = append(out, *sa)
	}
	return out, nil
}

func (r *servicedRepo) TakePending(ctx context.Context, id primitive.ObjectID) (*models.ServicedAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sa, ok := r.s.serviced[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "serviced asset %s not found", id.Hex())
	}
	delete(r.s.serviced, id)
	return sa, nil
}

func (r *servicedRepo) SumPending(ctx context.Context, key models.ItemKey) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	total := 0
	for _, sa := range r.s.serviced {
		if sa.ItemKey == key {
			total += sa.Quantity
		}
	}
	return total, nil
}

func (r *servicedRepo) InsertHistory(ctx context.Context, h *models.ServiceHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	cp := *h
	cp.ItemIDs = cloneIDs(h.ItemIDs)
	r.s.history = append(r.s.history, &cp)
	return nil
}

func (r *servicedRepo) ListHistory(ctx context.Context, key models.ItemKey) ([]models.ServiceHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	var out []models.ServiceHistory
	for _, h := range r.s.history {
		if h.ItemKey == key {
			out = append(out, *h)
		}
	}
	return out, nil
}

type exchangeRepo struct{ s *Store }

var _ repository.Exchanges = (*exchangeRepo)(nil)

func (r *exchangeRepo) Insert(ctx context.Context, ex *models.ExchangedConsumable) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ex.ID.IsZero() {
		ex.ID = primitive.NewObjectID()
	}
	cp := *ex
	r.s.exchanges[ex.ID] = &cp
	return nil
}

func (r *exchangeRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.ExchangedConsumable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ex, ok := r.s.exchanges[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "exchange %s not found", id.Hex())
	}
	cp := *ex
	return &cp, nil
}

func (r *exchangeRepo) List(ctx context.Context) ([]models.ExchangedConsumable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.ExchangedConsumable, 0, len(r.s.exchanges))
	for _, ex := range r.s.exchanges {
		out = append(out, *ex)
	}
	return out, nil
}

func (r *exchangeRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.ExchangedConsumable, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ex, ok := r.s.exchanges[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "exchange %s not found", id.Hex())
	}
	delete(r.s.exchanges, id)
	return ex, nil
}

type disposalRepo struct{ s *Store }

var _ repository.PendingDisposals = (*disposalRepo)(nil)

func (r *disposalRepo) Insert(ctx context.Context, pd *models.PendingDisposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if pd.ID.IsZero() {
		pd.ID = primitive.NewObjectID()
	}
	cp := *pd
	cp.ItemIDs = cloneIDs(pd.ItemIDs)
	r.s.disposals[pd.ID] = &cp
	return nil
}

func (r *disposalRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pd, ok := r.s.disposals[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending disposal %s not found", id.Hex())
	}
	cp := *pd
	return &cp, nil
}

func (r *disposalRepo) List(ctx context.Context) ([]models.PendingDisposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.PendingDisposal, 0, len(r.s.disposals))
	for _, pd := range r.s.disposals {
		out = append(out, *pd)
	}
	return out, nil
}

func (r *disposalRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	pd, ok := r.s.disposals[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending disposal %s not found", id.Hex())
	}
	delete(r.s.disposals, id)
	return pd, nil
}

type disposedRepo struct{ s *Store }

var _ repository.DisposedAssets = (*disposedRepo)(nil)

func (r *disposedRepo) Insert(ctx context.Context, da *models.DisposedAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if da.ID.IsZero() {
		da.ID = primitive.NewObjectID()
	}
	cp := *da
	cp.ItemIDs = cloneIDs(da.ItemIDs)
	r.s.disposed = append(r.s.disposed, &cp)
	return nil
}

func (r *disposedRepo) List(ctx context.Context) ([]models.DisposedAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.DisposedAsset, 0, len(r.s.disposed))
	for _, da := range r.s.disposed {
		out = append(out, *da)
	}
	return out, nil
}

func (r *disposedRepo) SumQuantity(ctx context.Context, key models.ItemKey) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	total := 0
	for _, da := range r.s.disposed {
		if da.ItemKey != key {
			continue
		}
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
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.deadStock[key.Normalize().String()]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "no dead stock entry for %q", key.ItemName)
	}
	cp := *entry
	return &cp, nil
}

func (r *deadStockRepo) List(ctx context.Context) ([]models.DeadStockEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.DeadStockEntry, 0, len(r.s.deadStock))
	for _, e := range r.s.deadStock {
		out = append(out, *e)
	}
	return out, nil
}

func (r *deadStockRepo) Upsert(ctx context.Context, entry *models.DeadStockEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry.ItemKey = entry.ItemKey.Normalize()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.UpdatedAt = time.Now()
	cp := *entry
	r.s.deadStock[entry.ItemKey.String()] = &cp
	return nil
}

func (r *deadStockRepo) IncrementCondemned(ctx context.Context, key models.ItemKey, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.deadStock[key.Normalize().String()]
	if !ok {
		return apperr.New(apperr.KindNotFound, "no dead stock entry for %q", key.ItemName)
	}
	entry.CondemnedQuantity += qty
	entry.UpdatedAt = time.Now()
	return nil
}

func (r *deadStockRepo) SetComputed(ctx context.Context, key models.ItemKey, overall, servicable, condemned int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	entry, ok := r.s.deadStock[key.Normalize().String()]
	if !ok {
		return apperr.New(apperr.KindNotFound, "no dead stock entry for %q", key.ItemName)
	}
	entry.OverallQuantity = overall
	entry.ServicableQuantity = servicable
	entry.CondemnedQuantity = condemned
	entry.UpdatedAt = time.Now()
	return nil
}

type rejectionRepo struct{ s *Store }

var _ repository.RejectionSink = (*rejectionRepo)(nil)

func (r *rejectionRepo) Insert(ctx context.Context, rej *models.RejectedAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rej.ID.IsZero() {
		rej.ID = primitive.NewObjectID()
	}
	cp := *rej
	r.s.rejections = append(r.s.rejections, &cp)
	return nil
}

func (r *rejectionRepo) List(ctx context.Context) ([]models.RejectedAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.RejectedAsset, 0, len(r.s.rejections))
	for _, rej := range r.s.rejections {
		out = append(out, *rej)
	}
	return out, nil
}

type unitIDRepo struct{ s *Store }

var _ repository.UnitIDs = (*unitIDRepo)(nil)

// FindExisting scans every collection that may currently hold a Permanent
// unit. Purchase records are excluded: they keep minted ids forever as
// history.
func (r *unitIDRepo) FindExisting(ctx context.Context, ids []string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	found := make(map[string]struct{})

	check := func(id string) {
		if _, ok := want[id]; ok {
			found[id] = struct{}{}
		}
	}

	for _, e := range r.s.stock {
		for _, id := range e.ItemIDs {
			check(id)
		}
	}
	for _, i := range r.s.issues {
		for _, id := range i.IssuedIDs {
			check(id)
		}
	}
	for _, rec := range r.s.issued {
		for _, l := range rec.Issues {
			for _, id := range l.IssuedIDs {
				check(id)
			}
		}
	}
	for _, rec := range r.s.returns {
		check(rec.ItemID)
	}
	for _, sa := range r.s.serviced {
		for _, id := range sa.ItemIDs {
			check(id)
		}
	}
	for _, da := range r.s.disposed {
		for _, id := range da.ItemIDs {
			check(id)
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
