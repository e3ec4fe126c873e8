package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type returnRepo struct{ s *Store }

var _ repository.ReturnedRecords = (*returnRepo)(nil)

func (r *returnRepo) Insert(ctx context.Context, rec *models.ReturnedRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	cp := *rec
	r.s.returns[rec.ID] = &cp
	return nil
}

func (r *returnRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.returns[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "returned record %s not found", id.Hex())
	}
	cp := *rec
	return &cp, nil
}

func (r *returnRepo) List(ctx context.Context) ([]models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.ReturnedRecord, 0, len(r.s.returns))
	for _, rec := range r.s.returns {
		out = append(out, *rec)
	}
	return out, nil
}

func (r *returnRepo) ListByState(ctx context.Context, state models.ReturnState) ([]models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.ReturnedRecord
	for _, rec := range r.s.returns {
		if rec.State == state {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *returnRepo) Transition(ctx context.Context, id primitive.ObjectID, from, to models.ReturnState) (*models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transitionLocked(id, from, to, false)
}

func (r *returnRepo) MarkServiceRejected(ctx context.Context, id primitive.ObjectID, to models.ReturnState) (*models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.transitionLocked(id, models.ReturnServicePending, to, true)
}

func (r *returnRepo) transitionLocked(id primitive.ObjectID, from, to models.ReturnState, serviceRejected bool) (*models.ReturnedRecord, error) {
	rec, ok := r.s.returns[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "returned record %s not found", id.Hex())
	}
	if rec.State != from {
		return nil, apperr.New(apperr.KindPreconditionFailed, "returned record %s is %s, expected %s", id.Hex(), rec.State, from)
	}
	rec.State = to
	if serviceRejected {
		rec.ServicedRejected = true
	}
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

// Unlock releases the disposal soft lock and marks the record as having had
// a disposal cancelled, returning it to the eligible pool.
func (r *returnRepo) Unlock(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.returns[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "returned record %s not found", id.Hex())
	}
	if rec.State != models.ReturnDisposeLocked {
		return nil, apperr.New(apperr.KindPreconditionFailed, "returned record %s is %s, expected %s", id.Hex(), rec.State, models.ReturnDisposeLocked)
	}
	rec.State = models.ReturnDisposeEligible
	rec.RejectedDisposal = true
	rec.UpdatedAt = time.Now()
	cp := *rec
	return &cp, nil
}

func (r *returnRepo) Delete(ctx context.Context, id primitive.ObjectID, expect models.ReturnState) (*models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.returns[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "returned record %s not found", id.Hex())
	}
	if rec.State != expect {
		return nil, apperr.New(apperr.KindPreconditionFailed, "returned record %s is %s, expected %s", id.Hex(), rec.State, expect)
	}
	delete(r.s.returns, id)
	return rec, nil
}

func (r *returnRepo) ListByIDs(ctx context.Context, key models.ItemKey, ids []string, state models.ReturnState) ([]models.ReturnedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var out []models.ReturnedRecord
	for _, rec := range r.s.returns {
		if rec.ItemKey != key || rec.State != state {
			continue
		}
		if _, ok := want[rec.ItemID]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *returnRepo) SumInService(ctx context.Context, key models.ItemKey) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	total := 0
	for _, rec := range r.s.returns {
		if rec.ItemKey == key && rec.InService() {
			total += rec.Units()
		}
	}
	return total, nil
}

type storeReturnRepo struct{ s *Store }

var _ repository.StoreReturns = (*storeReturnRepo)(nil)

func (r *storeReturnRepo) Insert(ctx context.Context, sr *models.StoreReturn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if sr.ID.IsZero() {
		sr.ID = primitive.NewObjectID()
	}
	cp := *sr
	cp.ItemIDs = cloneIDs(sr.ItemIDs)
	r.s.storeReturns[sr.ID] = &cp
	return nil
}

func (r *storeReturnRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.StoreReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sr, ok := r.s.storeReturns[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "store return %s not found", id.Hex())
	}
	cp := *sr
	return &cp, nil
}

func (r *storeReturnRepo) List(ctx context.Context) ([]models.StoreReturn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.StoreReturn, 0, len(r.s.storeReturns))
	for _, sr := range r.s.storeReturns {
		out = append(out, *sr)
	}
	return out, nil
}

func (r *storeReturnRepo) SetReceipt(ctx context.Context, id primitive.ObjectID, receiptURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sr, ok := r.s.storeReturns[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "store return %s not found", id.Hex())
	}
	sr.ReceiptURL = receiptURL
	return nil
}
