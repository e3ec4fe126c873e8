// Package memory provides a mutex-guarded in-memory implementation of the
// repository interfaces. It backs the service tests and doubles as a
// throwaway dev backend.
package memory

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

// Store holds every collection behind one mutex. The engine's operations are
// short read-modify-write sequences, so a single lock gives the same
// per-document atomicity the Mongo backend provides with conditional updates.
type Store struct {
	mu sync.Mutex

	stock        map[string]*models.StockEntry
	entries      map[primitive.ObjectID]*models.PendingEntry
	purchases    []*models.PurchaseRecord
	issues       map[primitive.ObjectID]*models.PendingIssue
	issued       map[string]*models.IssuedRecord
	returns      map[primitive.ObjectID]*models.ReturnedRecord
	storeReturns map[primitive.ObjectID]*models.StoreReturn
	serviced     map[primitive.ObjectID]*models.ServicedAsset
	history      []*models.ServiceHistory
	exchanges    map[primitive.ObjectID]*models.ExchangedConsumable
	disposals    map[primitive.ObjectID]*models.PendingDisposal
	disposed     []*models.DisposedAsset
	deadStock    map[string]*models.DeadStockEntry
	rejections   []*models.RejectedAsset
}

// New builds an empty in-memory store.
func New() *Store {
	return &Store{
		stock:        make(map[string]*models.StockEntry),
		entries:      make(map[primitive.ObjectID]*models.PendingEntry),
		issues:       make(map[primitive.ObjectID]*models.PendingIssue),
		issued:       make(map[string]*models.IssuedRecord),
		returns:      make(map[primitive.ObjectID]*models.ReturnedRecord),
		storeReturns: make(map[primitive.ObjectID]*models.StoreReturn),
		serviced:     make(map[primitive.ObjectID]*models.ServicedAsset),
		exchanges:    make(map[primitive.ObjectID]*models.ExchangedConsumable),
		disposals:    make(map[primitive.ObjectID]*models.PendingDisposal),
		deadStock:    make(map[string]*models.DeadStockEntry),
	}
}

// Repositories exposes the store as the interface bundle services consume.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Stock:        &stockRepo{s},
		Entries:      &entryRepo{s},
		Purchases:    &purchaseRepo{s},
		Issues:       &issueRepo{s},
		Issued:       &issuedRepo{s},
		Returns:      &returnRepo{s},
		StoreReturns: &storeReturnRepo{s},
		Serviced:     &servicedRepo{s},
		Exchanges:    &exchangeRepo{s},
		Disposals:    &disposalRepo{s},
		Disposed:     &disposedRepo{s},
		DeadStock:    &deadStockRepo{s},
		Rejections:   &rejectionRepo{s},
		UnitIDs:      &unitIDRepo{s},
	}
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func cloneStock(e *models.StockEntry) *models.StockEntry {
	c := *e
	c.ItemIDs = cloneIDs(e.ItemIDs)
	return &c
}

func cloneIssued(r *models.IssuedRecord) *models.IssuedRecord {
	c := *r
	c.Issues = make([]models.IssueLine, len(r.Issues))
	for i, l := range r.Issues {
		l.IssuedIDs = cloneIDs(l.IssuedIDs)
		c.Issues[i] = l
	}
	return &c
}
