package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReturnState is the single explicit state of a returned unit. It replaces
// the pair of ad hoc approval flags the old data entry forms used, so that
// combinations like "waiting for head-of-office while not dispose-bound"
// cannot be represented at all.
type ReturnState string

const (
	// ReturnPendingReview: returned, awaiting the Asset Manager's condition call.
	ReturnPendingReview ReturnState = "pending_review"
	// ReturnServiceApproved: condition set to service, awaiting a service entry.
	ReturnServiceApproved ReturnState = "service_approved"
	// ReturnServicePending: a service entry exists, awaiting service acceptance.
	ReturnServicePending ReturnState = "service_pending"
	// ReturnServiceRejected: service was refused; unit stays queryable.
	ReturnServiceRejected ReturnState = "service_rejected"
	// ReturnExchangePending: Consumable exchange raised, awaiting approval.
	ReturnExchangePending ReturnState = "exchange_pending"
	// ReturnDisposeAwaitingHOO: dispose-bound, second approval outstanding.
	ReturnDisposeAwaitingHOO ReturnState = "dispose_awaiting_hoo"
	// ReturnDisposeEligible: both approvals cleared, may enter a disposal request.
	ReturnDisposeEligible ReturnState = "dispose_eligible"
	// ReturnDisposeLocked: referenced by a pending disposal request.
	ReturnDisposeLocked ReturnState = "dispose_locked"
)

var returnTransitions = map[ReturnState][]ReturnState{
	ReturnPendingReview:      {ReturnServiceApproved, ReturnDisposeAwaitingHOO, ReturnExchangePending},
	ReturnServiceApproved:    {ReturnServicePending},
	ReturnServicePending:     {ReturnServiceRejected, ReturnPendingReview},
	ReturnExchangePending:    {ReturnDisposeAwaitingHOO},
	ReturnDisposeAwaitingHOO: {ReturnDisposeEligible},
	ReturnDisposeEligible:    {ReturnDisposeLocked},
	ReturnDisposeLocked:      {ReturnDisposeEligible},
}

// AllowedTo reports whether s may transition to next. Terminal resolutions
// (credit back to stock, service acceptance, disposal, rejection) delete the
// record instead of transitioning it.
func (s ReturnState) AllowedTo(next ReturnState) bool {
	for _, t := range returnTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// SourceStore marks a return whose unit came back from the store itself for
// inspection rather than from an issued location.
const SourceStore = "Store"

// ReturnedRecord is one returned Permanent unit, or one aggregate Consumable
// return batch, moving through condition resolution. Its eventual resolution
// credits exactly one of the stock ledger, the service track, the exchange
// track or the disposal queue.
type ReturnedRecord struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	// Source is the location the unit was issued to, or SourceStore.
	Source string `bson:"source" json:"source"`
	// ItemID is set for Permanent returns, exactly one unit per record.
	ItemID string `bson:"itemId,omitempty" json:"itemId,omitempty"`
	// ReturnQuantity is set for Consumable returns.
	ReturnQuantity   int         `bson:"returnQuantity,omitempty" json:"returnQuantity,omitempty"`
	State            ReturnState `bson:"state" json:"state"`
	Remarks          string      `bson:"remarks,omitempty" json:"remarks,omitempty"`
	ReceiptURL       string      `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	ServicedRejected bool        `bson:"servicedRejected,omitempty" json:"servicedRejected,omitempty"`
	RejectedDisposal bool        `bson:"rejectedDisposal,omitempty" json:"rejectedDisposal,omitempty"`
	ReturnedAt       time.Time   `bson:"returnedAt" json:"returnedAt"`
	UpdatedAt        time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Units is the quantity this record stands for, regardless of asset type.
func (r *ReturnedRecord) Units() int {
	if r.AssetType == AssetPermanent {
		return 1
	}
	return r.ReturnQuantity
}

// InService reports whether the unit currently counts as serviceable stock
// for the dead-stock register.
func (r *ReturnedRecord) InService() bool {
	return r.State == ReturnServiceApproved || r.State == ReturnServicePending
}

// StoreReturn is the staging entry for units sent back from the store for
// inspection. Its receipt may be re-uploaded until the linked returns leave
// review.
type StoreReturn struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	Quantity   int                  `bson:"quantity" json:"quantity"`
	ItemIDs    []string             `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	ReturnIDs  []primitive.ObjectID `bson:"returnIds" json:"returnIds"`
	ReceiptURL string               `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
}
