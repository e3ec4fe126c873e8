package returns

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
)

// resolveExchange stages a consumable return for replacement by the vendor.
// Permanent units carry serial identity and cannot be swapped like-for-like.
func (s *Service) resolveExchange(ctx context.Context, id primitive.ObjectID, remarks string) error {
	rec, err := s.repos.Returns.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.AssetType != models.AssetConsumable {
		return apperr.New(apperr.KindValidation, "only consumable returns can be exchanged")
	}
	if _, err := s.repos.Returns.Transition(ctx, id, models.ReturnPendingReview, models.ReturnExchangePending); err != nil {
		return err
	}

	ex := &models.ExchangedConsumable{
		ItemKey:          rec.ItemKey,
		ReturnID:         rec.ID,
		ReturnedQuantity: rec.ReturnQuantity,
		Remarks:          remarks,
		CreatedAt:        s.now(),
	}
	if err := s.repos.Exchanges.Insert(ctx, ex); err != nil {
		if _, backErr := s.repos.Returns.Transition(ctx, id, models.ReturnExchangePending, models.ReturnPendingReview); backErr != nil {
			s.logger.Error("failed reversing exchange routing", zap.Error(backErr), zap.String("id", id.Hex()))
		}
		return err
	}

	s.publish(ctx, "return_exchange_staged", rec.ItemKey, map[string]any{"returnId": id.Hex()})
	return nil
}

// ServicedRequest records a batch of units handed to a service vendor.
type ServicedRequest struct {
	Key           models.ItemKey
	ItemIDs       []string
	Quantity      int
	ServiceNo     string
	ServiceDate   time.Time
	ServiceAmount float64
}

// SaveServiced moves service-approved returns into an in-service batch. Each
// matched return is pinned to the batch so approval and rejection can find
// their way back.
func (s *Service) SaveServiced(ctx context.Context, req ServicedRequest) (*models.ServicedAsset, error) {
	if err := req.Key.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "serviced batch")
	}
	if strings.TrimSpace(req.ServiceNo) == "" {
		return nil, apperr.New(apperr.KindValidation, "service number is required")
	}
	key := req.Key.Normalize()

	matched, err := s.matchApprovedReturns(ctx, key, req.ItemIDs, req.Quantity)
	if err != nil {
		return nil, err
	}
	qty := req.Quantity
	if key.AssetType == models.AssetPermanent {
		qty = len(req.ItemIDs)
	}

	var moved []primitive.ObjectID
	for _, rec := range matched {
		if _, err := s.repos.Returns.Transition(ctx, rec.ID, models.ReturnServiceApproved, models.ReturnServicePending); err != nil {
			for _, id := range moved {
				if _, backErr := s.repos.Returns.Transition(ctx, id, models.ReturnServicePending, models.ReturnServiceApproved); backErr != nil {
					s.logger.Error("failed unwinding serviced batch", zap.Error(backErr), zap.String("id", id.Hex()))
				}
			}
			return nil, err
		}
		moved = append(moved, rec.ID)
	}

	batch := &models.ServicedAsset{
		ItemKey:       key,
		ItemIDs:       req.ItemIDs,
		Quantity:      qty,
		ReturnIDs:     moved,
		ServiceNo:     req.ServiceNo,
		ServiceDate:   req.ServiceDate,
		ServiceAmount: req.ServiceAmount,
		CreatedAt:     s.now(),
	}
	if err := s.repos.Serviced.InsertPending(ctx, batch); err != nil {
		for _, id := range moved {
			if _, backErr := s.repos.Returns.Transition(ctx, id, models.ReturnServicePending, models.ReturnServiceApproved); backErr != nil {
				s.logger.Error("failed unwinding serviced batch", zap.Error(backErr), zap.String("id", id.Hex()))
			}
		}
		return nil, err
	}

	s.publish(ctx, "serviced_batch_saved", key, map[string]any{"serviceNo": req.ServiceNo, "quantity": qty})
	return batch, nil
}

// ApproveService completes a service batch: units return to stock, the source
// returns are retired, and the spend lands in the service history.
func (s *Service) ApproveService(ctx context.Context, id primitive.ObjectID) error {
	batch, err := s.repos.Serviced.TakePending(ctx, id)
	if err != nil {
		return err
	}

	qty := batch.Quantity
	if batch.AssetType == models.AssetPermanent {
		qty = len(batch.ItemIDs)
	}
	if err := s.repos.Stock.Credit(ctx, batch.ItemKey, qty, batch.ItemIDs); err != nil {
		if reinsertErr := s.repos.Serviced.InsertPending(ctx, batch); reinsertErr != nil {
			s.logger.Error("failed re-staging serviced batch after credit failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}

	for _, returnID := range batch.ReturnIDs {
		if _, err := s.repos.Returns.Delete(ctx, returnID, models.ReturnServicePending); err != nil {
			s.logger.Error("failed retiring serviced return", zap.Error(err), zap.String("returnId", returnID.Hex()))
		}
	}

	hist := &models.ServiceHistory{
		ItemKey:       batch.ItemKey,
		ItemIDs:       batch.ItemIDs,
		Quantity:      batch.Quantity,
		ServiceNo:     batch.ServiceNo,
		ServiceAmount: batch.ServiceAmount,
		CompletedAt:   s.now(),
	}
	if err := s.repos.Serviced.InsertHistory(ctx, hist); err != nil {
		s.logger.Error("service spend not recorded in history", zap.Error(err), zap.String("serviceNo", batch.ServiceNo))
	}

	s.publish(ctx, "service_approved", batch.ItemKey, map[string]any{"serviceNo": batch.ServiceNo, "quantity": qty})
	return nil
}

// RejectService voids a service batch. Permanent units park in a terminal
// rejected state for manual follow-up; consumables re-enter review.
func (s *Service) RejectService(ctx context.Context, id primitive.ObjectID) error {
	batch, err := s.repos.Serviced.TakePending(ctx, id)
	if err != nil {
		return err
	}

	target := models.ReturnServiceRejected
	if batch.AssetType == models.AssetConsumable {
		target = models.ReturnPendingReview
	}
	for _, returnID := range batch.ReturnIDs {
		if _, err := s.repos.Returns.MarkServiceRejected(ctx, returnID, target); err != nil {
			s.logger.Error("failed flagging service-rejected return", zap.Error(err), zap.String("returnId", returnID.Hex()))
		}
	}

	s.publish(ctx, "service_rejected", batch.ItemKey, map[string]any{"serviceNo": batch.ServiceNo})
	return nil
}

// ApproveExchange confirms the vendor replaced the consumables: the
// replacement quantity credits stock and the exchanged return retires.
func (s *Service) ApproveExchange(ctx context.Context, id primitive.ObjectID) error {
	ex, err := s.repos.Exchanges.Take(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repos.Stock.Credit(ctx, ex.ItemKey, ex.ReturnedQuantity, nil); err != nil {
		if reinsertErr := s.repos.Exchanges.Insert(ctx, ex); reinsertErr != nil {
			s.logger.Error("failed re-staging exchange after credit failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}
	if _, err := s.repos.Returns.Delete(ctx, ex.ReturnID, models.ReturnExchangePending); err != nil {
		s.logger.Error("failed retiring exchanged return", zap.Error(err), zap.String("returnId", ex.ReturnID.Hex()))
	}

	s.publish(ctx, "exchange_approved", ex.ItemKey, map[string]any{"quantity": ex.ReturnedQuantity})
	return nil
}

// RejectExchange is a one-way ratchet: a refused exchange does not re-enter
// review, it heads for the HOO disposal gate.
func (s *Service) RejectExchange(ctx context.Context, id primitive.ObjectID) error {
	ex, err := s.repos.Exchanges.Take(ctx, id)
	if err != nil {
		return err
	}

	rec, err := s.repos.Returns.Transition(ctx, ex.ReturnID, models.ReturnExchangePending, models.ReturnDisposeAwaitingHOO)
	if err != nil {
		if reinsertErr := s.repos.Exchanges.Insert(ctx, ex); reinsertErr != nil {
			s.logger.Error("failed re-staging exchange after ratchet failure", zap.Error(reinsertErr), zap.String("id", id.Hex()))
		}
		return err
	}

	s.publish(ctx, "exchange_rejected", rec.ItemKey, map[string]any{"returnId": ex.ReturnID.Hex()})
	return nil
}

// ListServicedPending returns the in-service batches.
func (s *Service) ListServicedPending(ctx context.Context) ([]models.ServicedAsset, error) {
	return s.repos.Serviced.ListPending(ctx)
}

// ListServiceHistory returns completed service records for one item.
func (s *Service) ListServiceHistory(ctx context.Context, key models.ItemKey) ([]models.ServiceHistory, error) {
	return s.repos.Serviced.ListHistory(ctx, key.Normalize())
}

// ListExchanges returns staged exchanges.
func (s *Service) ListExchanges(ctx context.Context) ([]models.ExchangedConsumable, error) {
	return s.repos.Exchanges.List(ctx)
}

// ListStoreReturns returns the store-return staging entries.
func (s *Service) ListStoreReturns(ctx context.Context) ([]models.StoreReturn, error) {
	return s.repos.StoreReturns.List(ctx)
}

// matchApprovedReturns locates the service-approved returns covered by a
// serviced batch: by unit id for Permanent, by aggregate quantity for
// Consumable.
func (s *Service) matchApprovedReturns(ctx context.Context, key models.ItemKey, ids []string, qty int) ([]models.ReturnedRecord, error) {
	if key.AssetType == models.AssetPermanent {
		if len(ids) == 0 {
			return nil, apperr.New(apperr.KindInvalidIdentifierSet, "permanent batch needs unit ids")
		}
		if err := models.ValidateIDSet(ids); err != nil {
			return nil, err
		}
		matched, err := s.repos.Returns.ListByIDs(ctx, key, ids, models.ReturnServiceApproved)
		if err != nil {
			return nil, err
		}
		if len(matched) != len(ids) {
			return nil, apperr.New(apperr.KindPreconditionFailed, "%d of %d unit ids are not approved for service", len(ids)-len(matched), len(ids))
		}
		return matched, nil
	}

	if qty <= 0 {
		return nil, apperr.New(apperr.KindInvalidQuantity, "quantity must be positive")
	}
	if len(ids) != 0 {
		return nil, apperr.New(apperr.KindInvalidIdentifierSet, "consumable batch must not carry unit ids")
	}
	approved, err := s.repos.Returns.ListByState(ctx, models.ReturnServiceApproved)
	if err != nil {
		return nil, err
	}
	// Return batches are consumed whole: the cover must land on qty exactly,
	// otherwise retiring the matched returns would drop the surplus units.
	var matched []models.ReturnedRecord
	covered := 0
	for _, rec := range approved {
		if !rec.ItemKey.Equal(key) || covered == qty {
			continue
		}
		if covered+rec.ReturnQuantity > qty {
			continue
		}
		matched = append(matched, rec)
		covered += rec.ReturnQuantity
	}
	if covered != qty {
		return nil, apperr.New(apperr.KindPreconditionFailed, "approved return batches cover %d units, cannot service exactly %d", covered, qty)
	}
	return matched, nil
}
