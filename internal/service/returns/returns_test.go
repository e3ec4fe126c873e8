package returns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository/memory"
)

func chairKey() models.ItemKey {
	return models.ItemKey{
		AssetType:       models.AssetPermanent,
		AssetCategory:   "Furniture",
		ItemName:        "Chair",
		ItemDescription: "Steel revolving",
	}
}

func penKey() models.ItemKey {
	return models.ItemKey{
		AssetType:       models.AssetConsumable,
		AssetCategory:   "Stationery",
		ItemName:        "Pen",
		ItemDescription: "Blue ballpoint",
	}
}

// newTestService builds a store where two chairs and twenty pens are already
// issued to the hostel, and one chair and ten pens remain in stock.
func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	repos := memory.New().Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Stock.Credit(ctx, chairKey(), 3, []string{"CH-1", "CH-2", "CH-3"}))
	require.NoError(t, repos.Stock.Credit(ctx, penKey(), 30, nil))
	require.NoError(t, repos.Stock.Debit(ctx, chairKey(), 2, []string{"CH-1", "CH-2"}))
	require.NoError(t, repos.Stock.Debit(ctx, penKey(), 20, nil))
	require.NoError(t, repos.Issued.Merge(ctx, chairKey(), models.IssueLine{
		IssuedTo: "Hostel", Quantity: 2, IssuedIDs: []string{"CH-1", "CH-2"},
	}))
	require.NoError(t, repos.Issued.Merge(ctx, penKey(), models.IssueLine{
		IssuedTo: "Hostel", Quantity: 20,
	}))

	return NewService(repos, nil, nil), repos
}

func TestCreateFromIssuePermanentStagesPerUnit(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 2, ItemIDs: []string{"CH-1", "CH-2"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, models.ReturnPendingReview, rec.State)
		assert.Equal(t, "Hostel", rec.Source)
		assert.Equal(t, 1, rec.Units())
	}

	// the issue line is exhausted and dropped
	_, err = repos.Issued.Get(ctx, chairKey())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateFromIssueConsumableAggregates(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 8})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 8, records[0].ReturnQuantity)

	rec, err := repos.Issued.Get(ctx, penKey())
	require.NoError(t, err)
	assert.Equal(t, 12, rec.Line("Hostel").Quantity)
}

func TestCreateFromIssueRejectsOverReturn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateFromIssue(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 25})
	assert.Equal(t, apperr.KindInvalidQuantity, apperr.KindOf(err))

	_, err = svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 1, ItemIDs: []string{"CH-3"},
	})
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(err))
}

func TestResolveGoodCreditsStock(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 1, ItemIDs: []string{"CH-1"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionGood, ""))

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, stock.InStock)
	assert.Contains(t, stock.ItemIDs, "CH-1")

	_, err = svc.Get(ctx, records[0].ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResolveIsAtMostOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 1, ItemIDs: []string{"CH-1"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionService, ""))
	err = svc.Resolve(ctx, records[0].ID, ConditionService, "")
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestServiceFlow(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 2, ItemIDs: []string{"CH-1", "CH-2"},
	})
	require.NoError(t, err)
	for _, rec := range records {
		require.NoError(t, svc.Resolve(ctx, rec.ID, ConditionService, "wobbly"))
	}

	batch, err := svc.SaveServiced(ctx, ServicedRequest{
		Key: chairKey(), ItemIDs: []string{"CH-1", "CH-2"}, ServiceNo: "SRV-9", ServiceAmount: 700,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Quantity)

	// both returns now count as in service for the register
	inService, err := repos.Returns.SumInService(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, inService)

	require.NoError(t, svc.ApproveService(ctx, batch.ID))

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 3, stock.InStock)
	assert.ElementsMatch(t, []string{"CH-1", "CH-2", "CH-3"}, stock.ItemIDs)

	history, err := svc.ListServiceHistory(ctx, chairKey())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "SRV-9", history[0].ServiceNo)

	// returns retired with the batch
	remaining, err := repos.Returns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSaveServicedConsumableMatchesBatchesExactly(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	// two return batches of three pens each, both routed to service
	for i := 0; i < 2; i++ {
		records, err := svc.CreateFromIssue(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 3})
		require.NoError(t, err)
		require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionService, ""))
	}

	// a batch of five would retire six returned units while crediting five
	_, err := svc.SaveServiced(ctx, ServicedRequest{Key: penKey(), Quantity: 5, ServiceNo: "SRV-5"})
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	// no return left the approved pool on the failed attempt
	approved, err := repos.Returns.ListByState(ctx, models.ReturnServiceApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	batch, err := svc.SaveServiced(ctx, ServicedRequest{Key: penKey(), Quantity: 6, ServiceNo: "SRV-6"})
	require.NoError(t, err)
	require.NoError(t, svc.ApproveService(ctx, batch.ID))

	// every pen is accounted for again: 10 in stock + 14 still issued + 6 serviced
	stock, err := repos.Stock.Get(ctx, penKey())
	require.NoError(t, err)
	assert.Equal(t, 16, stock.InStock)

	issued, err := repos.Issued.Get(ctx, penKey())
	require.NoError(t, err)
	assert.Equal(t, 14, issued.Line("Hostel").Quantity)

	remaining, err := repos.Returns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSaveServicedRequiresApprovedReturns(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SaveServiced(ctx, ServicedRequest{
		Key: chairKey(), ItemIDs: []string{"CH-1"}, ServiceNo: "SRV-1",
	})
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestRejectServicePermanentParksRecord(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 1, ItemIDs: []string{"CH-1"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionService, ""))

	batch, err := svc.SaveServiced(ctx, ServicedRequest{
		Key: chairKey(), ItemIDs: []string{"CH-1"}, ServiceNo: "SRV-2",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RejectService(ctx, batch.ID))

	rec, err := repos.Returns.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnServiceRejected, rec.State)
	assert.True(t, rec.ServicedRejected)
}

func TestExchangeFlow(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionExchange, "dried out"))

	exchanges, err := svc.ListExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, 5, exchanges[0].ReturnedQuantity)

	require.NoError(t, svc.ApproveExchange(ctx, exchanges[0].ID))

	stock, err := repos.Stock.Get(ctx, penKey())
	require.NoError(t, err)
	assert.Equal(t, 15, stock.InStock)

	_, err = svc.Get(ctx, records[0].ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestExchangeRejectIsOneWayRatchet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 5})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionExchange, ""))

	exchanges, err := svc.ListExchanges(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RejectExchange(ctx, exchanges[0].ID))

	rec, err := svc.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnDisposeAwaitingHOO, rec.State)
}

func TestExchangeRejectsPermanent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 1, ItemIDs: []string{"CH-1"},
	})
	require.NoError(t, err)

	err = svc.Resolve(ctx, records[0].ID, ConditionExchange, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestHOOApproveUnifiedPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// a consumable travels the same gate as a permanent unit
	records, err := svc.CreateFromIssue(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 3})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionDispose, "beyond repair"))

	rec, err := svc.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnDisposeAwaitingHOO, rec.State)

	require.NoError(t, svc.HOOApprove(ctx, records[0].ID))

	rec, err = svc.Get(ctx, records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnDisposeEligible, rec.State)

	// gate cannot be cleared twice
	err = svc.HOOApprove(ctx, records[0].ID)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestHOORejectRestoresIssuedLedger(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	records, err := svc.CreateFromIssue(ctx, Request{
		Key: chairKey(), IssuedTo: "Hostel", Quantity: 1, ItemIDs: []string{"CH-1"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, records[0].ID, ConditionDispose, ""))

	require.NoError(t, svc.HOOReject(ctx, records[0].ID, "still usable"))

	rec, err := repos.Issued.Get(ctx, chairKey())
	require.NoError(t, err)
	line := rec.Line("Hostel")
	require.NotNil(t, line)
	assert.Equal(t, 2, line.Quantity)
	assert.Contains(t, line.IssuedIDs, "CH-1")

	rejections, err := repos.Rejections.List(ctx)
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, models.ActionReturnHOORejected, rejections[0].Action)
}

func TestStoreReturnFlow(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	sr, err := svc.CreateStoreReturn(ctx, StoreReturnRequest{
		Key: chairKey(), Quantity: 1, ItemIDs: []string{"CH-3"}, ReceiptURL: "https://files/v1.pdf",
	})
	require.NoError(t, err)
	require.Len(t, sr.ReturnIDs, 1)

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 0, stock.InStock)

	require.NoError(t, svc.ReuploadStoreReceipt(ctx, sr.ID, "https://files/v2.pdf"))
	got, err := repos.StoreReturns.Get(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files/v2.pdf", got.ReceiptURL)

	// HOO rejection of a store return goes back to stock, not the issue ledger
	require.NoError(t, svc.Resolve(ctx, sr.ReturnIDs[0], ConditionDispose, ""))
	require.NoError(t, svc.HOOReject(ctx, sr.ReturnIDs[0], "still fine"))

	stock, err = repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 1, stock.InStock)
	assert.Contains(t, stock.ItemIDs, "CH-3")
}

func TestHOORejectRequiresRemarks(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.HOOReject(context.Background(), primitive.NewObjectID(), "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
