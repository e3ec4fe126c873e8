// Package entry implements the pending-entry workflow: purchase transactions
// awaiting the Asset Manager decision, fanning out into purchase records and
// stock credits on approval.
package entry

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/pkg/clients/notify"
)

// Service runs the pending-entry state machine.
type Service struct {
	repos    *repository.Store
	notifier notify.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an entry service instance.
func NewService(repos *repository.Store, notifier notify.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repos: repos, notifier: notifier, logger: logger, now: time.Now}
}

// Create stores a purchase transaction for later Manager decision. Nothing
// reaches the stock ledger until approval.
func (s *Service) Create(ctx context.Context, e *models.PendingEntry) (*models.PendingEntry, error) {
	if len(e.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "entry needs at least one item")
	}
	for i := range e.Items {
		item := &e.Items[i]
		if err := item.ItemKey.Validate(); err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, err, "item %d", i)
		}
		item.ItemKey = item.ItemKey.Normalize()
		if item.QuantityReceived <= 0 {
			return nil, apperr.New(apperr.KindInvalidQuantity, "item %d: quantity received must be positive", i)
		}
		if item.AssetType == models.AssetPermanent {
			if len(item.ItemIDs) != item.QuantityReceived {
				return nil, apperr.New(apperr.KindInvalidIdentifierSet, "item %d: %d unit ids for quantity %d", i, len(item.ItemIDs), item.QuantityReceived)
			}
			if err := models.ValidateIDSet(item.ItemIDs); err != nil {
				return nil, err
			}
		} else if len(item.ItemIDs) != 0 {
			return nil, apperr.New(apperr.KindInvalidIdentifierSet, "item %d: consumable items must not carry unit ids", i)
		}
	}
	if err := s.checkMintedIDs(ctx, e); err != nil {
		return nil, err
	}

	e.CreatedAt = s.now()
	if e.PurchaseDate.IsZero() {
		e.PurchaseDate = e.CreatedAt
	}
	if err := s.repos.Entries.Insert(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("pending entry created", zap.String("id", e.ID.Hex()), zap.Int("items", len(e.Items)))
	return e, nil
}

// Approve consumes the entry exactly once, creating one purchase record and
// one stock credit per item. The conditional take serializes racing
// approvals; a failed fan-out re-stages the entry.
func (s *Service) Approve(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error) {
	e, err := s.repos.Entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkMintedIDs(ctx, e); err != nil {
		return nil, err
	}
	for _, item := range e.Items {
		if entry, err := s.repos.Stock.Get(ctx, item.ItemKey); err == nil {
			if err := entry.ValidateCredit(item.QuantityReceived, item.ItemIDs); err != nil {
				return nil, err
			}
		}
	}

	e, err = s.repos.Entries.Take(ctx, id)
	if err != nil {
		return nil, err
	}

	var credited []models.EntryItem
	var recorded []primitive.ObjectID
	for _, item := range e.Items {
		if err := s.repos.Stock.Credit(ctx, item.ItemKey, item.QuantityReceived, item.ItemIDs); err != nil {
			s.rollbackApprove(ctx, e, credited, recorded)
			return nil, err
		}
		credited = append(credited, item)

		rec := &models.PurchaseRecord{
			ItemKey:          item.ItemKey,
			PurchaseDate:     e.PurchaseDate,
			BillNo:           e.BillNo,
			QuantityReceived: item.QuantityReceived,
			UnitPrice:        item.UnitPrice,
			ItemIDs:          item.ItemIDs,
			CreatedAt:        s.now(),
		}
		if err := s.repos.Purchases.Insert(ctx, rec); err != nil {
			s.rollbackApprove(ctx, e, credited, recorded)
			return nil, err
		}
		recorded = append(recorded, rec.ID)
	}

	s.publish(ctx, "entry_approved", e)
	s.logger.Info("entry approved", zap.String("id", id.Hex()), zap.Int("items", len(e.Items)))
	return e, nil
}

// Reject moves the entry verbatim into the rejection sink.
func (s *Service) Reject(ctx context.Context, id primitive.ObjectID, remarks string) error {
	if strings.TrimSpace(remarks) == "" {
		return apperr.New(apperr.KindValidation, "rejection remarks are required")
	}

	e, err := s.repos.Entries.Take(ctx, id)
	if err != nil {
		return err
	}
	rej := &models.RejectedAsset{
		Action:     models.ActionEntryRejected,
		Payload:    e,
		Remarks:    remarks,
		RejectedAt: s.now(),
	}
	if err := s.repos.Rejections.Insert(ctx, rej); err != nil {
		// put the entry back rather than lose it
		if reinsertErr := s.repos.Entries.Insert(ctx, e); reinsertErr != nil {
			s.logger.Error("failed re-staging entry after sink failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}

	s.publish(ctx, "entry_rejected", e)
	s.logger.Info("entry rejected", zap.String("id", id.Hex()))
	return nil
}

// Get returns one pending entry.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error) {
	return s.repos.Entries.Get(ctx, id)
}

// List returns all pending entries.
func (s *Service) List(ctx context.Context) ([]models.PendingEntry, error) {
	return s.repos.Entries.List(ctx)
}

func (s *Service) checkMintedIDs(ctx context.Context, e *models.PendingEntry) error {
	var minted []string
	seen := make(map[string]struct{})
	for _, item := range e.Items {
		for _, id := range item.ItemIDs {
			if _, dup := seen[id]; dup {
				return apperr.New(apperr.KindDuplicateIdentifier, "item id %q minted twice in one entry", id)
			}
			seen[id] = struct{}{}
			minted = append(minted, id)
		}
	}
	if len(minted) == 0 {
		return nil
	}
	clash, err := s.repos.UnitIDs.FindExisting(ctx, minted)
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return apperr.New(apperr.KindDuplicateIdentifier, "item ids already in circulation: %s", strings.Join(clash, ", "))
	}
	return nil
}

// rollbackApprove takes back everything a failed approval fan-out already
// wrote: purchase records first, then the stock credits, then the entry
// itself goes back on the queue. A leftover purchase record would double
// count quantity on the next approval attempt.
func (s *Service) rollbackApprove(ctx context.Context, e *models.PendingEntry, credited []models.EntryItem, recorded []primitive.ObjectID) {
	for _, id := range recorded {
		if err := s.repos.Purchases.Delete(ctx, id); err != nil {
			s.logger.Error("failed removing purchase record during approve rollback",
				zap.Error(err), zap.String("recordId", id.Hex()))
		}
	}
	for _, item := range credited {
		if err := s.repos.Stock.Debit(ctx, item.ItemKey, item.QuantityReceived, item.ItemIDs); err != nil {
			s.logger.Error("failed reversing stock credit during approve rollback",
				zap.Error(err), zap.String("item", item.ItemName))
		}
	}
	if err := s.repos.Entries.Insert(ctx, e); err != nil {
		s.logger.Error("failed re-staging entry during approve rollback", zap.Error(err), zap.String("id", e.ID.Hex()))
	}
}

func (s *Service) publish(ctx context.Context, action string, e *models.PendingEntry) {
	var key models.ItemKey
	if len(e.Items) > 0 {
		key = e.Items[0].ItemKey
	}
	event := models.TransitionEvent{
		AssetType:     key.AssetType,
		AssetCategory: key.AssetCategory,
		Action:        action,
		ActionTime:    s.now(),
		Fields:        map[string]any{"entryId": e.ID.Hex(), "billNo": e.BillNo},
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("notification sink unreachable", zap.Error(err), zap.String("action", action))
	}
}
