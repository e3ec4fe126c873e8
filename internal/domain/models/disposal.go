package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisposalMeta carries the condemnation paperwork for a disposal request.
type DisposalMeta struct {
	Method       string    `bson:"method,omitempty" json:"method,omitempty"`
	Remarks      string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
	DisposalDate time.Time `bson:"disposalDate" json:"disposalDate"`
}

// BuildingDisposal describes a building condemnation. Buildings carry no
// quantity semantics and never touch the dead-stock register.
type BuildingDisposal struct {
	Name               string  `bson:"name" json:"name"`
	Location           string  `bson:"location,omitempty" json:"location,omitempty"`
	DemolitionEstimate float64 `bson:"demolitionEstimate,omitempty" json:"demolitionEstimate,omitempty"`
}

// PendingDisposal is a disposal request awaiting Manager approval. It
// references returns that already cleared both approval gates; those returns
// stay soft-locked until the request resolves.
type PendingDisposal struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	ItemIDs   []string             `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	Quantity  int                  `bson:"quantity,omitempty" json:"quantity,omitempty"`
	ReturnIDs []primitive.ObjectID `bson:"returnIds,omitempty" json:"returnIds,omitempty"`
	Building  *BuildingDisposal    `bson:"building,omitempty" json:"building,omitempty"`
	Meta      DisposalMeta         `bson:"meta" json:"meta"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// DisposedAsset is the terminal record of a condemned unit set.
type DisposedAsset struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	ItemIDs    []string          `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	Quantity   int               `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Building   *BuildingDisposal `bson:"building,omitempty" json:"building,omitempty"`
	Meta       DisposalMeta      `bson:"meta" json:"meta"`
	DisposedAt time.Time         `bson:"disposedAt" json:"disposedAt"`
}
