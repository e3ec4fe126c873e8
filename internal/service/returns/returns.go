// Package returns implements the return workflow and condition resolution:
// issued (or store) units come back, get classified by the Asset Manager,
// and route into stock, service, exchange or the disposal pipeline. Dispose
// routing sits behind a second, independent Head-of-Office gate.
package returns

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

// Condition is the Manager's classification of a returned unit.
type Condition string

const (
	ConditionGood     Condition = "Good"
	ConditionService  Condition = "service"
	ConditionDispose  Condition = "dispose"
	ConditionExchange Condition = "exchange"
)

// Service runs return creation, condition resolution and the HOO gate.
type Service struct {
	repos    *repository.Store
	notifier notify.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a returns service instance.
func NewService(repos *repository.Store, notifier notify.Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repos: repos, notifier: notifier, logger: logger, now: time.Now}
}

// Request describes a return of issued stock from a location.
type Request struct {
	Key      models.ItemKey
	IssuedTo string
	Quantity int
	ItemIDs  []string
	Remarks  string
}

// CreateFromIssue debits the outstanding-issue ledger and stages returned
// records: one per unit for Permanent, one aggregate for Consumable.
func (s *Service) CreateFromIssue(ctx context.Context, req Request) ([]models.ReturnedRecord, error) {
	if err := req.Key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "return request")
	}
	if strings.TrimSpace(req.IssuedTo) == "" {
		return nil, apperr.New(apperr.KindValidation, "issuedTo is required")
	}
	if err := models.ValidateIDSet(req.ItemIDs); err != nil {
		return nil, err
	}
	key := req.Key.Normalize()

	if err := s.repos.Issued.Debit(ctx, key, req.IssuedTo, req.Quantity, req.ItemIDs); err != nil {
		return nil, err
	}

	records, err := s.stageReturns(ctx, key, req.IssuedTo, req.Quantity, req.ItemIDs, req.Remarks, "")
	if err != nil {
		line := models.IssueLine{IssuedTo: req.IssuedTo, Quantity: req.Quantity, IssuedIDs: req.ItemIDs, IssuedDate: s.now()}
		if mergeErr := s.repos.Issued.Merge(ctx, key, line); mergeErr != nil {
			s.logger.Error("failed restoring issue line after return staging failure",
				zap.Error(mergeErr), zap.String("issuedTo", req.IssuedTo))
		}
		return nil, err
	}

	s.publish(ctx, "return_created", key, map[string]any{"source": req.IssuedTo, "quantity": req.Quantity})
	return records, nil
}

// StoreReturnRequest describes units the store itself sends for inspection.
type StoreReturnRequest struct {
	Key        models.ItemKey
	Quantity   int
	ItemIDs    []string
	ReceiptURL string
	Remarks    string
}

// CreateStoreReturn debits the stock ledger directly and stages returned
// records with the store as source, plus a staging entry whose receipt stays
// re-uploadable.
func (s *Service) CreateStoreReturn(ctx context.Context, req StoreReturnRequest) (*models.StoreReturn, error) {
	if err := req.Key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "store return request")
	}
	if err := models.ValidateIDSet(req.ItemIDs); err != nil {
		return nil, err
	}
	key := req.Key.Normalize()

	if err := s.repos.Stock.Debit(ctx, key, req.Quantity, req.ItemIDs); err != nil {
		return nil, err
	}

	records, err := s.stageReturns(ctx, key, models.SourceStore, req.Quantity, req.ItemIDs, req.Remarks, req.ReceiptURL)
	if err != nil {
		if creditErr := s.repos.Stock.Credit(ctx, key, req.Quantity, req.ItemIDs); creditErr != nil {
			s.logger.Error("failed reversing stock debit after store return staging failure", zap.Error(creditErr))
		}
		return nil, err
	}

	returnIDs := make([]primitive.ObjectID, len(records))
	for i, r := range records {
		returnIDs[i] = r.ID
	}
	sr := &models.StoreReturn{
		ItemKey:    key,
		Quantity:   req.Quantity,
		ItemIDs:    req.ItemIDs,
		ReturnIDs:  returnIDs,
		ReceiptURL: req.ReceiptURL,
		CreatedAt:  s.now(),
	}
	if err := s.repos.StoreReturns.Insert(ctx, sr); err != nil {
		return nil, err
	}

	s.publish(ctx, "store_return_created", key, map[string]any{"quantity": req.Quantity})
	return sr, nil
}

// ReuploadStoreReceipt overwrites the staged receipt.
func (s *Service) ReuploadStoreReceipt(ctx context.Context, id primitive.ObjectID, receiptURL string) error {
	if strings.TrimSpace(receiptURL) == "" {
		return apperr.New(apperr.KindValidation, "receipt is required")
	}
	return s.repos.StoreReturns.SetReceipt(ctx, id, receiptURL)
}

// Resolve applies the Manager's condition call to a pending return.
func (s *Service) Resolve(ctx context.Context, id primitive.ObjectID, condition Condition, remarks string) error {
	switch condition {
	case ConditionGood:
		return s.resolveGood(ctx, id)
	case ConditionService:
		_, err := s.repos.Returns.Transition(ctx, id, models.ReturnPendingReview, models.ReturnServiceApproved)
		if err != nil {
			return err
		}
		s.logger.Info("return routed to service", zap.String("id", id.Hex()))
		return nil
	case ConditionDispose:
		rec, err := s.repos.Returns.Transition(ctx, id, models.ReturnPendingReview, models.ReturnDisposeAwaitingHOO)
		if err != nil {
			return err
		}
		s.publish(ctx, "return_dispose_requested", rec.ItemKey, map[string]any{"returnId": id.Hex()})
		return nil
	case ConditionExchange:
		return s.resolveExchange(ctx, id, remarks)
	default:
		return apperr.New(apperr.KindValidation, "unknown condition %q", condition)
	}
}

// resolveGood credits the unit straight back into stock and drops the
// record; the credit runs before the irreversible delete.
func (s *Service) resolveGood(ctx context.Context, id primitive.ObjectID) error {
	rec, err := s.repos.Returns.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.State != models.ReturnPendingReview {
		return apperr.New(apperr.KindPreconditionFailed, "returned record %s is %s, expected %s", id.Hex(), rec.State, models.ReturnPendingReview)
	}

	qty, ids := rec.Units(), unitIDs(rec)
	if err := s.repos.Stock.Credit(ctx, rec.ItemKey, qty, ids); err != nil {
		return err
	}
	if _, err := s.repos.Returns.Delete(ctx, id, models.ReturnPendingReview); err != nil {
		// lost the race after crediting: take the credit back
		if debitErr := s.repos.Stock.Debit(ctx, rec.ItemKey, qty, ids); debitErr != nil {
			s.logger.Error("failed reversing credit after racing good-resolution", zap.Error(debitErr), zap.String("id", id.Hex()))
		}
		return err
	}

	s.publish(ctx, "return_resolved_good", rec.ItemKey, map[string]any{"returnId": id.Hex(), "quantity": qty})
	return nil
}

// HOOApprove clears the Head-of-Office gate; the unit becomes eligible for a
// disposal request. Consumables historically short-circuited straight into
// the disposed set here; both kinds now take the unified disposal path.
func (s *Service) HOOApprove(ctx context.Context, id primitive.ObjectID) error {
	rec, err := s.repos.Returns.Transition(ctx, id, models.ReturnDisposeAwaitingHOO, models.ReturnDisposeEligible)
	if err != nil {
		return err
	}
	if rec.AssetType == models.AssetConsumable {
		s.logger.Warn("consumable cleared HOO gate via unified disposal path",
			zap.String("id", id.Hex()), zap.String("item", rec.ItemName))
	}
	s.publish(ctx, "return_hoo_approved", rec.ItemKey, map[string]any{"returnId": id.Hex()})
	return nil
}

// HOOReject reverses the return exactly as a Manager rejection would:
// credit back to stock for store returns, back into the issue line
// otherwise, plus a rejection sink entry.
func (s *Service) HOOReject(ctx context.Context, id primitive.ObjectID, remarks string) error {
	if strings.TrimSpace(remarks) == "" {
		return apperr.New(apperr.KindValidation, "rejection remarks are required")
	}

	rec, err := s.repos.Returns.Delete(ctx, id, models.ReturnDisposeAwaitingHOO)
	if err != nil {
		return err
	}

	qty, ids := rec.Units(), unitIDs(rec)
	if rec.Source == models.SourceStore {
		err = s.repos.Stock.Credit(ctx, rec.ItemKey, qty, ids)
	} else {
		line := models.IssueLine{IssuedTo: rec.Source, Quantity: qty, IssuedIDs: ids, IssuedDate: s.now()}
		err = s.repos.Issued.Merge(ctx, rec.ItemKey, line)
	}
	if err != nil {
		if reinsertErr := s.repos.Returns.Insert(ctx, rec); reinsertErr != nil {
			s.logger.Error("failed re-staging return after HOO reject reversal failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}

	rej := &models.RejectedAsset{
		Action:     models.ActionReturnHOORejected,
		Payload:    rec,
		Remarks:    remarks,
		RejectedAt: s.now(),
	}
	if err := s.repos.Rejections.Insert(ctx, rej); err != nil {
		s.logger.Error("HOO rejection not recorded in sink", zap.Error(err), zap.String("id", id.Hex()))
	}

	s.publish(ctx, "return_hoo_rejected", rec.ItemKey, map[string]any{"returnId": id.Hex()})
	return nil
}

// Get returns one returned record.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error) {
	return s.repos.Returns.Get(ctx, id)
}

// List returns returned records, optionally filtered by state.
func (s *Service) List(ctx context.Context, state models.ReturnState) ([]models.ReturnedRecord, error) {
	if state == "" {
		return s.repos.Returns.List(ctx)
	}
	return s.repos.Returns.ListByState(ctx, state)
}

func (s *Service) stageReturns(ctx context.Context, key models.ItemKey, source string, qty int, ids []string, remarks, receiptURL string) ([]models.ReturnedRecord, error) {
	now := s.now()
	var records []models.ReturnedRecord

	if key.AssetType == models.AssetPermanent {
		for _, unitID := range ids {
			rec := &models.ReturnedRecord{
				ItemKey:    key,
				Source:     source,
				ItemID:     unitID,
				State:      models.ReturnPendingReview,
				Remarks:    remarks,
				ReceiptURL: receiptURL,
				ReturnedAt: now,
				UpdatedAt:  now,
			}
			if err := s.repos.Returns.Insert(ctx, rec); err != nil {
				for _, staged := range records {
					if _, delErr := s.repos.Returns.Delete(ctx, staged.ID, models.ReturnPendingReview); delErr != nil {
						s.logger.Error("failed unwinding staged return", zap.Error(delErr), zap.String("id", staged.ID.Hex()))
					}
				}
				return nil, err
			}
			records = append(records, *rec)
		}
		return records, nil
	}

	rec := &models.ReturnedRecord{
		ItemKey:        key,
		Source:         source,
		ReturnQuantity: qty,
		State:          models.ReturnPendingReview,
		Remarks:        remarks,
		ReceiptURL:     receiptURL,
		ReturnedAt:     now,
		UpdatedAt:      now,
	}
	if err := s.repos.Returns.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return []models.ReturnedRecord{*rec}, nil
}

func unitIDs(rec *models.ReturnedRecord) []string {
	if rec.AssetType == models.AssetPermanent {
		return []string{rec.ItemID}
	}
	return nil
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
