package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
)

// StockLedger mutates per-item-key available stock. Credit and Debit are
// conditional single-document updates: they either apply fully or fail with
// a business-rule error and no mutation.
type StockLedger interface {
	Get(ctx context.Context, key models.ItemKey) (*models.StockEntry, error)
	List(ctx context.Context) ([]models.StockEntry, error)
	Credit(ctx context.Context, key models.ItemKey, qty int, ids []string) error
	Debit(ctx context.Context, key models.ItemKey, qty int, ids []string) error
}

// PendingEntries stores purchase transactions awaiting the Manager decision.
// Take removes and returns the entry at most once; a second Take of the same
// id reports not-found.
type PendingEntries interface {
	Insert(ctx context.Context, entry *models.PendingEntry) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error)
	List(ctx context.Context) ([]models.PendingEntry, error)
	Take(ctx context.Context, id primitive.ObjectID) (*models.PendingEntry, error)
}

// PurchaseRecords stores the immutable purchase history per item key. Delete
// exists solely for compensation: an approval that fails mid-fan-out must be
// able to take back the records it already wrote.
type PurchaseRecords interface {
	Insert(ctx context.Context, rec *models.PurchaseRecord) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByKey(ctx context.Context, key models.ItemKey) ([]models.PurchaseRecord, error)
	SumQuantity(ctx context.Context, key models.ItemKey) (int, error)
}

// PendingIssues stores issue requests between creation and resolution.
// TakeAcknowledged removes the issue only when it has been countersigned;
// it distinguishes precondition-failed (exists, unacknowledged) from
// not-found (already resolved).
type PendingIssues interface {
	Insert(ctx context.Context, issue *models.PendingIssue) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error)
	List(ctx context.Context) ([]models.PendingIssue, error)
	Acknowledge(ctx context.Context, id primitive.ObjectID, receiptURL string) error
	TakeAcknowledged(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error)
	Take(ctx context.Context, id primitive.ObjectID) (*models.PendingIssue, error)
}

// IssuedRecords stores open issues per item key. Merge is additive per
// location; Debit drops a line entirely when its quantity reaches zero.
type IssuedRecords interface {
	Get(ctx context.Context, key models.ItemKey) (*models.IssuedRecord, error)
	List(ctx context.Context) ([]models.IssuedRecord, error)
	Merge(ctx context.Context, key models.ItemKey, line models.IssueLine) error
	Debit(ctx context.Context, key models.ItemKey, issuedTo string, qty int, ids []string) error
}

// ReturnedRecords stores returned units through condition resolution. All
// state flips are conditional on the expected current state, so two racing
// approvals of the same record serialize to at-most-once application.
type ReturnedRecords interface {
	Insert(ctx context.Context, rec *models.ReturnedRecord) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error)
	List(ctx context.Context) ([]models.ReturnedRecord, error)
	ListByState(ctx context.Context, state models.ReturnState) ([]models.ReturnedRecord, error)
	Transition(ctx context.Context, id primitive.ObjectID, from, to models.ReturnState) (*models.ReturnedRecord, error)
	MarkServiceRejected(ctx context.Context, id primitive.ObjectID, to models.ReturnState) (*models.ReturnedRecord, error)
	Unlock(ctx context.Context, id primitive.ObjectID) (*models.ReturnedRecord, error)
	Delete(ctx context.Context, id primitive.ObjectID, expect models.ReturnState) (*models.ReturnedRecord, error)
	// ListByIDs returns records for the key in the given state whose unit id
	// is one of ids, for locating and cleaning up Permanent service records.
	ListByIDs(ctx context.Context, key models.ItemKey, ids []string, state models.ReturnState) ([]models.ReturnedRecord, error)
	SumInService(ctx context.Context, key models.ItemKey) (int, error)
}

// StoreReturns stages returns raised by the store itself; only the receipt is
// mutable after creation.
type StoreReturns interface {
	Insert(ctx context.Context, sr *models.StoreReturn) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.StoreReturn, error)
	List(ctx context.Context) ([]models.StoreReturn, error)
	SetReceipt(ctx context.Context, id primitive.ObjectID, receiptURL string) error
}

// ServicedAssets stores pending service entries and completed service
// history. TakePending removes the pending entry at most once.
type ServicedAssets interface {
	InsertPending(ctx context.Context, sa *models.ServicedAsset) error
	GetPending(ctx context.Context, id primitive.ObjectID) (*models.ServicedAsset, error)
	ListPending(ctx context.Context) ([]models.ServicedAsset, error)
	TakePending(ctx context.Context, id primitive.ObjectID) (*models.ServicedAsset, error)
	SumPending(ctx context.Context, key models.ItemKey) (int, error)
	InsertHistory(ctx context.Context, h *models.ServiceHistory) error
	ListHistory(ctx context.Context, key models.ItemKey) ([]models.ServiceHistory, error)
}

// Exchanges stores pending Consumable exchanges.
type Exchanges interface {
	Insert(ctx context.Context, ex *models.ExchangedConsumable) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.ExchangedConsumable, error)
	List(ctx context.Context) ([]models.ExchangedConsumable, error)
	Take(ctx context.Context, id primitive.ObjectID) (*models.ExchangedConsumable, error)
}

// PendingDisposals stores disposal requests awaiting Manager approval.
type PendingDisposals interface {
	Insert(ctx context.Context, pd *models.PendingDisposal) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error)
	List(ctx context.Context) ([]models.PendingDisposal, error)
	Take(ctx context.Context, id primitive.ObjectID) (*models.PendingDisposal, error)
}

// DisposedAssets stores terminal condemnation records.
type DisposedAssets interface {
	Insert(ctx context.Context, da *models.DisposedAsset) error
	List(ctx context.Context) ([]models.DisposedAsset, error)
	SumQuantity(ctx context.Context, key models.ItemKey) (int, error)
}

// DeadStock stores the derived dead-stock register. IncrementCondemned fails
// with not-found when no entry exists yet; the caller then recomputes and
// upserts a fresh entry. SetComputed is last-write-wins.
type DeadStock interface {
	Get(ctx context.Context, key models.ItemKey) (*models.DeadStockEntry, error)
	List(ctx context.Context) ([]models.DeadStockEntry, error)
	Upsert(ctx context.Context, entry *models.DeadStockEntry) error
	IncrementCondemned(ctx context.Context, key models.ItemKey, qty int) error
	SetComputed(ctx context.Context, key models.ItemKey, overall, servicable, condemned int) error
}

// RejectionSink stores denied transitions, append-only.
type RejectionSink interface {
	Insert(ctx context.Context, r *models.RejectedAsset) error
	List(ctx context.Context) ([]models.RejectedAsset, error)
}

// UnitIDs answers institution-wide identifier uniqueness queries across every
// collection that may currently hold a Permanent unit.
type UnitIDs interface {
	FindExisting(ctx context.Context, ids []string) ([]string, error)
}

// Store bundles every repository the engine's services operate on.
type Store struct {
	Stock        StockLedger
	Entries      PendingEntries
	Purchases    PurchaseRecords
	Issues       PendingIssues
	Issued       IssuedRecords
	Returns      ReturnedRecords
	StoreReturns StoreReturns
	Serviced     ServicedAssets
	Exchanges    Exchanges
	Disposals    PendingDisposals
	Disposed     DisposedAssets
	DeadStock    DeadStock
	Rejections   RejectionSink
	UnitIDs      UnitIDs
}
