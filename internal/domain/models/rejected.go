package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RejectedAsset is the terminal, append-only record of a denied transition.
// The full denied payload is preserved for audit and never mutated again.
type RejectedAsset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Action     string             `bson:"action" json:"action"`
	Payload    any                `bson:"payload" json:"payload"`
	Remarks    string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	RejectedAt time.Time          `bson:"rejectedAt" json:"rejectedAt"`
}

// Rejection sink action names.
const (
	ActionEntryRejected     = "entry_rejected"
	ActionIssueRejected     = "issue_rejected"
	ActionReturnHOORejected = "return_hoo_rejected"
	ActionDisposalCancelled = "disposal_cancelled"
)
