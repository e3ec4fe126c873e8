package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeadStockEntry is the per-item-key row of the dead-stock register. It is a
// derived aggregate, not a source of truth: the incremental updates drift and
// the repair sweep recomputes Overall and Servicable from purchase records
// and in-service returns.
type DeadStockEntry struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	OverallQuantity    int       `bson:"overallQuantity" json:"overallQuantity"`
	ServicableQuantity int       `bson:"servicableQuantity" json:"servicableQuantity"`
	CondemnedQuantity  int       `bson:"condemnedQuantity" json:"condemnedQuantity"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}
