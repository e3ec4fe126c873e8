package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryItem is one item line of a purchase transaction.
type EntryItem struct {
	ItemKey `bson:",inline"`
	QuantityReceived int      `bson:"quantityReceived" json:"quantityReceived" binding:"required"`
	UnitPrice        float64  `bson:"unitPrice,omitempty" json:"unitPrice,omitempty"`
	ItemIDs          []string `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	AMCDate          string   `bson:"amcDate,omitempty" json:"amcDate,omitempty"`
}

// PendingEntry is one purchase transaction awaiting the Asset Manager's
// decision. It is consumed exactly once: approval fans it out into purchase
// records and stock credits, rejection moves it verbatim into the rejection
// sink. It is never visible in the stock ledger before approval.
type PendingEntry struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PurchaseDate time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	Source       string             `bson:"source,omitempty" json:"source,omitempty"`
	BillNo       string             `bson:"billNo,omitempty" json:"billNo,omitempty"`
	ReceivedBy   string             `bson:"receivedBy,omitempty" json:"receivedBy,omitempty"`
	BillPhotoURL string             `bson:"billPhotoUrl,omitempty" json:"billPhotoUrl,omitempty"`
	Items        []EntryItem        `bson:"items" json:"items"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// PurchaseRecord is the immutable historical fact of what was bought for one
// item key. It is the source of truth for overall-quantity recomputation and
// is never decremented.
type PurchaseRecord struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	PurchaseDate     time.Time `bson:"purchaseDate" json:"purchaseDate"`
	BillNo           string    `bson:"billNo,omitempty" json:"billNo,omitempty"`
	QuantityReceived int       `bson:"quantityReceived" json:"quantityReceived"`
	UnitPrice        float64   `bson:"unitPrice,omitempty" json:"unitPrice,omitempty"`
	ItemIDs          []string  `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}
