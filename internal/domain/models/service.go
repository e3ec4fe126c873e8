package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServicedAsset is a pending service entry awaiting acceptance. Approval
// credits the serviced units back to stock and records a ServiceHistory row.
type ServicedAsset struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	ItemIDs       []string             `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	Quantity      int                  `bson:"quantity" json:"quantity"`
	ReturnIDs     []primitive.ObjectID `bson:"returnIds" json:"returnIds"`
	ServiceNo     string               `bson:"serviceNo,omitempty" json:"serviceNo,omitempty"`
	ServiceDate   time.Time            `bson:"serviceDate" json:"serviceDate"`
	ServiceAmount float64              `bson:"serviceAmount,omitempty" json:"serviceAmount,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
}

// ServiceHistory is the retained record of a completed service.
type ServiceHistory struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ItemKey `bson:",inline"`
	ItemIDs       []string  `bson:"itemIds,omitempty" json:"itemIds,omitempty"`
	Quantity      int       `bson:"quantity" json:"quantity"`
	ServiceNo     string    `bson:"serviceNo,omitempty" json:"serviceNo,omitempty"`
	ServiceAmount float64   `bson:"serviceAmount,omitempty" json:"serviceAmount,omitempty"`
	CompletedAt   time.Time `bson:"completedAt" json:"completedAt"`
}
