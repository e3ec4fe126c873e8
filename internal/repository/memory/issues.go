package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

type issueRepo struct{ s *Store }

var _ repository.PendingIssues = (*issueRepo)(nil)

func (r *issueRepo) Insert(ctx context.Context, issue *models.PendingIssue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	cp := *issue
	cp.IssuedIDs = cloneIDs(issue.IssuedIDs)
	r.s.issues[issue.ID] = &cp
	return nil
}

func (r *issueRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	cp := *issue
	cp.IssuedIDs = cloneIDs(issue.IssuedIDs)
	return &cp, nil
}

func (r *issueRepo) List(ctx context.Context) ([]models.PendingIssue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.PendingIssue, 0, len(r.s.issues))
	for _, i := range r.s.issues {
		cp := *i
		cp.IssuedIDs = cloneIDs(i.IssuedIDs)
		out = append(out, cp)
	}
	return out, nil
}

// Acknowledge is idempotent: re-uploading overwrites the receipt.
func (r *issueRepo) Acknowledge(ctx context.Context, id primitive.ObjectID, receiptURL string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	issue.Acknowledged = true
	issue.ReceiptURL = receiptURL
	return nil
}

func (r *issueRepo) TakeAcknowledged(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	if !issue.Acknowledged {
		return nil, apperr.New(apperr.KindPreconditionFailed, "issue %s has not been acknowledged", id.Hex())
	}
	delete(r.s.issues, id)
	return issue, nil
}

func (r *issueRepo) Take(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	issue, ok := r.s.issues[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "pending issue %s not found", id.Hex())
	}
	delete(r.s.issues, id)
	return issue, nil
}

type issuedRepo struct{ s *Store }

var _ repository.IssuedRecords = (*issuedRepo)(nil)

func (r *issuedRepo) Get(ctx context.Context, key models.ItemKey) (*models.IssuedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.issued[key.Normalize().String()]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "no issued record for %q", key.ItemName)
	}
	return cloneIssued(rec), nil
}

func (r *issuedRepo) List(ctx context.Context) ([]models.IssuedRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.IssuedRecord, 0, len(r.s.issued))
	for _, rec := range r.s.issued {
		out = append(out, *cloneIssued(rec))
	}
	return out, nil
}

// Merge accumulates into the existing line for the same location instead of
// adding a new one.
func (r *issuedRepo) Merge(ctx context.Context, key models.ItemKey, line models.IssueLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	rec, ok := r.s.issued[key.String()]
	if !ok {
		rec = &models.IssuedRecord{ID: primitive.NewObjectID(), ItemKey: key}
		r.s.issued[key.String()] = rec
	}

	if existing := rec.Line(line.IssuedTo); existing != nil {
		existing.Quantity += line.Quantity
		existing.IssuedIDs = append(existing.IssuedIDs, line.IssuedIDs...)
	} else {
		line.IssuedIDs = cloneIDs(line.IssuedIDs)
		rec.Issues = append(rec.Issues, line)
	}
	rec.UpdatedAt = time.Now()
	return nil
}

func (r *issuedRepo) Debit(ctx context.Context, key models.ItemKey, issuedTo string, qty int, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key = key.Normalize()
	rec, ok := r.s.issued[key.String()]
	if !ok {
		return apperr.New(apperr.KindNotFound, "no issued record for %q", key.ItemName)
	}
	line := rec.Line(issuedTo)
	if line == nil {
		return apperr.New(apperr.KindNotFound, "no open issue for %q at %q", key.ItemName, issuedTo)
	}
	if qty <= 0 {
		return apperr.New(apperr.KindInvalidQuantity, "debit quantity must be positive, got %d", qty)
	}
	if qty > line.Quantity {
		return apperr.New(apperr.KindInvalidQuantity, "returned %d exceeds outstanding %d at %q", qty, line.Quantity, issuedTo)
	}

	if key.AssetType == models.AssetPermanent {
		if len(ids) != qty {
			return apperr.New(apperr.KindInvalidIdentifierSet, "permanent debit needs %d item ids, got %d", qty, len(ids))
		}
		have := make(map[string]struct{}, len(line.IssuedIDs))
		for _, id := range line.IssuedIDs {
			have[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := have[id]; !ok {
				return apperr.New(apperr.KindInvalidIdentifierSet, "item id %q was not issued to %q", id, issuedTo)
			}
		}
		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		kept := line.IssuedIDs[:0]
		for _, id := range line.IssuedIDs {
			if _, gone := drop[id]; !gone {
				kept = append(kept, id)
			}
		}
		line.IssuedIDs = kept
	} else if len(ids) != 0 {
		return apperr.New(apperr.KindInvalidIdentifierSet, "consumable debit must not carry unit ids")
	}

	line.Quantity -= qty
	if line.Quantity == 0 {
		kept := rec.Issues[:0]
		for _, l := range rec.Issues {
			if l.IssuedTo != issuedTo {
				kept = append(kept, l)
			}
		}
		rec.Issues = kept
	}
	if len(rec.Issues) == 0 {
		delete(r.s.issued, key.String())
		return nil
	}
	rec.UpdatedAt = time.Now()
	return nil
}
