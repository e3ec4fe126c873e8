package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingIssue is an issue request passing through acknowledgement and then
// Manager approval. Stock is debited eagerly when the request is created and
// credited back if the request is rejected.
type PendingIssue struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	IssuedTo     string    `bson:"issuedTo" json:"issuedTo"`
	Quantity     int       `bson:"quantity" json:"quantity"`
	IssuedIDs    []string  `bson:"issuedIds,omitempty" json:"issuedIds,omitempty"`
	Acknowledged bool      `bson:"acknowledged" json:"acknowledged"`
	ReceiptURL   string    `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	RequestedAt  time.Time `bson:"requestedAt" json:"requestedAt"`
}

// IssueLine is one open issue toward a location. Repeated issues to the same
// location accumulate quantity and union their ids rather than adding lines.
type IssueLine struct {
	IssuedTo   string    `bson:"issuedTo" json:"issuedTo"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	IssuedIDs  []string  `bson:"issuedIds,omitempty" json:"issuedIds,omitempty"`
	IssuedDate time.Time `bson:"issuedDate" json:"issuedDate"`
}

// IssuedRecord holds all open issues for one item key.
type IssuedRecord struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	Issues    []IssueLine `bson:"issues" json:"issues"`
	UpdatedAt time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Line returns the issue line for a location, or nil.
func (r *IssuedRecord) Line(issuedTo string) *IssueLine {
	for i := range r.Issues {
		if r.Issues[i].IssuedTo == issuedTo {
			return &r.Issues[i]
		}
	}
	return nil
}

// Outstanding sums the open quantity across all locations.
func (r *IssuedRecord) Outstanding() int {
	total := 0
	for _, l := range r.Issues {
		total += l.Quantity
	}
	return total
}
