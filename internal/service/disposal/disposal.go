// Package disposal implements the condemnation pipeline: dispose-eligible
// returns are soft-locked behind a pending disposal, then either disposed for
// good or cancelled back to eligibility. Building demolitions ride the same
// pipeline without touching the dead stock register.
package disposal

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

// Service runs disposal requests, confirmations and cancellations.
type Service struct {
	repos    *repository.Store
	notifier notify.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a disposal service instance.
func NewService(repos *repository.Store, notifier notify.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repos: repos, notifier: notifier, logger: logger, now: time.Now}
}

// Request stages a disposal over HOO-cleared returns. Every named return is
// locked so no competing disposal can claim it; a partial lock unwinds.
func (s *Service) Request(ctx context.Context, key models.ItemKey, returnIDs []primitive.ObjectID, meta models.DisposalMeta) (*models.PendingDisposal, error) {
	if err := key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "disposal request")
	}
	if len(returnIDs) == 0 {
		return nil, apperr.New(apperr.KindValidation, "disposal needs at least one eligible return")
	}
	key = key.Normalize()

	var locked []primitive.ObjectID
	var itemIDs []string
	qty := 0
	for _, id := range returnIDs {
		rec, err := s.repos.Returns.Transition(ctx, id, models.ReturnDisposeEligible, models.ReturnDisposeLocked)
		if err != nil {
			s.unlockAll(ctx, locked)
			return nil, err
		}
		if !rec.ItemKey.Equal(key) {
			s.unlockAll(ctx, append(locked, id))
			return nil, apperr.New(apperr.KindValidation, "return %s belongs to a different item", id.Hex())
		}
		locked = append(locked, id)
		qty += rec.Units()
		if rec.AssetType == models.AssetPermanent {
			itemIDs = append(itemIDs, rec.ItemID)
		}
	}

	pd := &models.PendingDisposal{
		ItemKey:   key,
		ItemIDs:   itemIDs,
		Quantity:  qty,
		ReturnIDs: locked,
		Meta:      meta,
		CreatedAt: s.now(),
	}
	if err := s.repos.Disposals.Insert(ctx, pd); err != nil {
		s.unlockAll(ctx, locked)
		return nil, err
	}

	s.publish(ctx, "disposal_requested", key, map[string]any{"disposalId": pd.ID.Hex(), "quantity": qty})
	return pd, nil
}

// RequestBuilding stages a demolition. Buildings have no returns to lock and
// no dead stock entry to maintain.
func (s *Service) RequestBuilding(ctx context.Context, key models.ItemKey, building models.BuildingDisposal, meta models.DisposalMeta) (*models.PendingDisposal, error) {
	if err := key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "building disposal request")
	}
	if strings.TrimSpace(building.Name) == "" {
		return nil, apperr.New(apperr.KindValidation, "building name is required")
	}

	pd := &models.PendingDisposal{
		ItemKey:   key.Normalize(),
		Quantity:  1,
		Building:  &building,
		Meta:      meta,
		CreatedAt: s.now(),
	}
	if err := s.repos.Disposals.Insert(ctx, pd); err != nil {
		return nil, err
	}

	s.publish(ctx, "building_disposal_requested", pd.ItemKey, map[string]any{"disposalId": pd.ID.Hex(), "building": building.Name})
	return pd, nil
}

// Dispose confirms a pending disposal. The disposed record and register
// update land before the locked returns are deleted, so a crash leaves
// repairable state rather than lost units.
func (s *Service) Dispose(ctx context.Context, id primitive.ObjectID) (*models.DisposedAsset, error) {
	pd, err := s.repos.Disposals.Take(ctx, id)
	if err != nil {
		return nil, err
	}

	disposed := &models.DisposedAsset{
		ItemKey:    pd.ItemKey,
		ItemIDs:    pd.ItemIDs,
		Quantity:   pd.Quantity,
		Building:   pd.Building,
		Meta:       pd.Meta,
		DisposedAt: s.now(),
	}
	if err := s.repos.Disposed.Insert(ctx, disposed); err != nil {
		if reinsertErr := s.repos.Disposals.Insert(ctx, pd); reinsertErr != nil {
			s.logger.Error("failed re-staging disposal after insert failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return nil, err
	}

	if pd.Building == nil {
		if err := s.bumpRegister(ctx, pd.ItemKey, pd.Quantity); err != nil {
			s.logger.Error("dead stock register not updated; repair sweep will reconcile",
				zap.Error(err), zap.String("item", pd.ItemName))
		}
	}

	for _, returnID := range pd.ReturnIDs {
		if _, err := s.repos.Returns.Delete(ctx, returnID, models.ReturnDisposeLocked); err != nil {
			s.logger.Error("failed retiring disposed return", zap.Error(err), zap.String("returnId", returnID.Hex()))
		}
	}

	s.publish(ctx, "disposed", pd.ItemKey, map[string]any{"disposalId": id.Hex(), "quantity": pd.Quantity})
	return disposed, nil
}

// Cancel backs a pending disposal out: every locked return becomes eligible
// again, flagged so its history shows the refused disposal.
func (s *Service) Cancel(ctx context.Context, id primitive.ObjectID, remarks string) error {
	if strings.TrimSpace(remarks) == "" {
		return apperr.New(apperr.KindValidation, "cancellation remarks are required")
	}

	pd, err := s.repos.Disposals.Take(ctx, id)
	if err != nil {
		return err
	}
	var unlocked []primitive.ObjectID
	for _, returnID := range pd.ReturnIDs {
		if _, err := s.repos.Returns.Unlock(ctx, returnID); err != nil {
			// re-lock what came free and put the disposal back, so no return
			// is stranded in the locked state without a disposal owning it
			for _, freed := range unlocked {
				if _, relockErr := s.repos.Returns.Transition(ctx, freed, models.ReturnDisposeEligible, models.ReturnDisposeLocked); relockErr != nil {
					s.logger.Error("failed re-locking return during cancel rollback", zap.Error(relockErr), zap.String("returnId", freed.Hex()))
				}
			}
			if reinsertErr := s.repos.Disposals.Insert(ctx, pd); reinsertErr != nil {
				s.logger.Error("failed re-staging disposal during cancel rollback", zap.Error(reinsertErr), zap.String("id", id.Hex()))
			}
			return err
		}
		unlocked = append(unlocked, returnID)
	}

	rej := &models.RejectedAsset{
		Action:     models.ActionDisposalCancelled,
		Payload:    pd,
		Remarks:    remarks,
		RejectedAt: s.now(),
	}
	if err := s.repos.Rejections.Insert(ctx, rej); err != nil {
		s.logger.Error("cancelled disposal not recorded in sink", zap.Error(err), zap.String("id", id.Hex()))
	}

	s.publish(ctx, "disposal_cancelled", pd.ItemKey, map[string]any{"disposalId": id.Hex()})
	return nil
}

// Get returns one pending disposal.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error) {
	return s.repos.Disposals.Get(ctx, id)
}

// List returns all pending disposals.
func (s *Service) List(ctx context.Context) ([]models.PendingDisposal, error) {
	return s.repos.Disposals.List(ctx)
}

// ListDisposed returns the disposed-asset history.
func (s *Service) ListDisposed(ctx context.Context) ([]models.DisposedAsset, error) {
	return s.repos.Disposed.List(ctx)
}

// bumpRegister increments the condemned count, seeding a freshly computed
// entry when the item has never been on the register.
func (s *Service) bumpRegister(ctx context.Context, key models.ItemKey, qty int) error {
	err := s.repos.DeadStock.IncrementCondemned(ctx, key, qty)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return err
	}

	overall, err := s.repos.Purchases.SumQuantity(ctx, key)
	if err != nil {
		return err
	}
	inService, err := s.repos.Returns.SumInService(ctx, key)
	if err != nil {
		return err
	}
	pending, err := s.repos.Serviced.SumPending(ctx, key)
	if err != nil {
		return err
	}
	condemned, err := s.repos.Disposed.SumQuantity(ctx, key)
	if err != nil {
		return err
	}

	entry := &models.DeadStockEntry{
		ItemKey:            key,
		OverallQuantity:    overall,
		ServicableQuantity: inService + pending,
		CondemnedQuantity:  condemned,
		UpdatedAt:          s.now(),
	}
	return s.repos.DeadStock.Upsert(ctx, entry)
}

func (s *Service) unlockAll(ctx context.Context, ids []primitive.ObjectID) {
	for _, id := range ids {
		if _, err := s.repos.Returns.Transition(ctx, id, models.ReturnDisposeLocked, models.ReturnDisposeEligible); err != nil {
			s.logger.Error("failed unwinding disposal lock", zap.Error(err), zap.String("returnId", id.Hex()))
		}
	}
}

func (s *Service) publish(ctx context.Context, action string, key models.ItemKey, fields map[string]any) {
	event := models.TransitionEvent{
		AssetType:     key.AssetType,
		AssetCategory: key.AssetCategory,
		Action:        action,
		ActionTime:    s.now(),
		Fields:        fields,
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.Warn("notification sink unreachable", zap.Error(err), zap.String("action", action))
	}
}
