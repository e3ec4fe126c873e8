// Package deadstock maintains the dead stock register, a derived aggregate
// over purchases, in-service returns and disposals. Because register writes
// are best-effort during disposal, a periodic repair sweep recomputes every
// entry from the source collections.
package deadstock

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

// Service owns the register repair sweep and read access.
type Service struct {
	repos  *repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a dead stock service instance.
func NewService(repos *repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, logger: logger, now: time.Now}
}

// Repair recomputes every register entry from the source collections. The
// sweep is idempotent: running it twice over unchanged data is a no-op.
func (s *Service) Repair(ctx context.Context) error {
	entries, err := s.repos.DeadStock.List(ctx)
	if err != nil {
		return err
	}

	repaired := 0
	for _, entry := range entries {
		overall, servicable, condemned, err := s.compute(ctx, entry.ItemKey)
		if err != nil {
			s.logger.Error("register recompute failed", zap.Error(err), zap.String("item", entry.ItemName))
			continue
		}
		if overall == entry.OverallQuantity && servicable == entry.ServicableQuantity && condemned == entry.CondemnedQuantity {
			continue
		}
		if err := s.repos.DeadStock.SetComputed(ctx, entry.ItemKey, overall, servicable, condemned); err != nil {
			s.logger.Error("register repair write failed", zap.Error(err), zap.String("item", entry.ItemName))
			continue
		}
		repaired++
	}

	s.logger.Info("dead stock repair sweep finished",
		zap.Int("entries", len(entries)), zap.Int("repaired", repaired))
	return nil
}

// Get returns the register entry for one item.
func (s *Service) Get(ctx context.Context, key models.ItemKey) (*models.DeadStockEntry, error) {
	return s.repos.DeadStock.Get(ctx, key.Normalize())
}

// List returns the full register.
func (s *Service) List(ctx context.Context) ([]models.DeadStockEntry, error) {
	return s.repos.DeadStock.List(ctx)
}

func (s *Service) compute(ctx context.Context, key models.ItemKey) (overall, servicable, condemned int, err error) {
	if overall, err = s.repos.Purchases.SumQuantity(ctx, key); err != nil {
		return 0, 0, 0, err
	}
	inService, err := s.repos.Returns.SumInService(ctx, key)
	if err != nil {
		return 0, 0, 0, err
	}
	pending, err := s.repos.Serviced.SumPending(ctx, key)
	if err != nil {
		return 0, 0, 0, err
	}
	if condemned, err = s.repos.Disposed.SumQuantity(ctx, key); err != nil {
		return 0, 0, 0, err
	}
	return overall, inService + pending, condemned, nil
}
