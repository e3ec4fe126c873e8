package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExchangedConsumable is a pending exchange raised for a Consumable return.
// Approval credits the returned quantity back to stock; rejection ratchets
// the source return into the dispose track, never back to service or stock.
type ExchangedConsumable struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	ReturnID         primitive.ObjectID `bson:"returnId" json:"returnId"`
	ReturnedQuantity int                `bson:"returnedQuantity" json:"returnedQuantity"`
	Remarks          string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
