package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnStateTransitions(t *testing.T) {
	assert.True(t, ReturnPendingReview.AllowedTo(ReturnServiceApproved))
	assert.True(t, ReturnPendingReview.AllowedTo(ReturnDisposeAwaitingHOO))
	assert.True(t, ReturnPendingReview.AllowedTo(ReturnExchangePending))
	assert.True(t, ReturnServicePending.AllowedTo(ReturnPendingReview))
	assert.True(t, ReturnDisposeEligible.AllowedTo(ReturnDisposeLocked))
	assert.True(t, ReturnDisposeLocked.AllowedTo(ReturnDisposeEligible))

	// the exchange ratchet never goes back to review
	assert.False(t, ReturnExchangePending.AllowedTo(ReturnPendingReview))
	// no skipping the HOO gate
	assert.False(t, ReturnPendingReview.AllowedTo(ReturnDisposeEligible))
	assert.False(t, ReturnDisposeAwaitingHOO.AllowedTo(ReturnDisposeLocked))
	// terminal state stays terminal
	assert.False(t, ReturnServiceRejected.AllowedTo(ReturnPendingReview))
}

func TestReturnedRecordUnits(t *testing.T) {
	perm := &ReturnedRecord{
		ItemKey: ItemKey{AssetType: AssetPermanent},
		ItemID:  "CH-1",
	}
	assert.Equal(t, 1, perm.Units())

	cons := &ReturnedRecord{
		ItemKey:        ItemKey{AssetType: AssetConsumable},
		ReturnQuantity: 7,
	}
	assert.Equal(t, 7, cons.Units())
}

func TestReturnedRecordInService(t *testing.T) {
	rec := &ReturnedRecord{State: ReturnServiceApproved}
	assert.True(t, rec.InService())
	rec.State = ReturnServicePending
	assert.True(t, rec.InService())
	rec.State = ReturnPendingReview
	assert.False(t, rec.InService())
	rec.State = ReturnDisposeEligible
	assert.False(t, rec.InService())
}
