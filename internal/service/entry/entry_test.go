package entry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	repos := memory.New().Repositories()
	return NewService(repos, nil, nil), repos
}

func pendingChairs(ids ...string) *models.PendingEntry {
	return &models.PendingEntry{
		Source: "Supplier A",
		BillNo: "B-100",
		Items: []models.EntryItem{{
			ItemKey:          chairKey(),
			QuantityReceived: len(ids),
			UnitPrice:        1500,
			ItemIDs:          ids,
		}},
	}
}

func TestCreateValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.PendingEntry{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// permanent item with id count not matching quantity
	e := pendingChairs("CH-1", "CH-2")
	e.Items[0].QuantityReceived = 3
	_, err = svc.Create(ctx, e)
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(err))

	// consumable item must not carry unit ids
	_, err = svc.Create(ctx, &models.PendingEntry{Items: []models.EntryItem{{
		ItemKey:          penKey(),
		QuantityReceived: 5,
		ItemIDs:          []string{"P-1"},
	}}})
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(err))

	// duplicate id minted twice inside one entry
	e = pendingChairs("CH-1", "CH-1")
	_, err = svc.Create(ctx, e)
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(err))
}

func TestApproveCreditsStockAndHistory(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, pendingChairs("CH-1", "CH-2"))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, e.ID)
	require.NoError(t, err)

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, stock.InStock)
	assert.ElementsMatch(t, []string{"CH-1", "CH-2"}, stock.ItemIDs)
	assert.Len(t, stock.ItemIDs, stock.InStock)

	total, err := repos.Purchases.SumQuantity(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// the pending entry is gone
	_, err = svc.Get(ctx, e.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApproveIsAtMostOnce(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, pendingChairs("CH-1"))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, e.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, e.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 1, stock.InStock)
}

// flakyStockLedger fails the second credit it sees, standing in for a stock
// line mutated concurrently between the pre-check and the fan-out.
type flakyStockLedger struct {
	repository.StockLedger
	calls  int
	failed bool
}

func (f *flakyStockLedger) Credit(ctx context.Context, key models.ItemKey, qty int, ids []string) error {
	f.calls++
	if f.calls == 2 && !f.failed {
		f.failed = true
		return apperr.New(apperr.KindPreconditionFailed, "stock entry for %q changed concurrently", key.ItemName)
	}
	return f.StockLedger.Credit(ctx, key, qty, ids)
}

func TestApproveRollbackRemovesPurchaseRecords(t *testing.T) {
	repos := memory.New().Repositories()
	flaky := &flakyStockLedger{StockLedger: repos.Stock}
	repos.Stock = flaky
	svc := NewService(repos, nil, nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, &models.PendingEntry{
		Source: "Supplier A",
		BillNo: "B-200",
		Items: []models.EntryItem{
			{ItemKey: chairKey(), QuantityReceived: 2, ItemIDs: []string{"CH-1", "CH-2"}},
			{ItemKey: penKey(), QuantityReceived: 10},
		},
	})
	require.NoError(t, err)

	// second credit fails mid fan-out
	_, err = svc.Approve(ctx, e.ID)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	// the chair record written before the failure was taken back
	total, err := repos.Purchases.SumQuantity(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// the entry is back on the queue; a retry counts each item exactly once
	_, err = svc.Approve(ctx, e.ID)
	require.NoError(t, err)

	chairs, err := repos.Purchases.SumQuantity(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, chairs)
	pens, err := repos.Purchases.SumQuantity(ctx, penKey())
	require.NoError(t, err)
	assert.Equal(t, 10, pens)

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, stock.InStock)
	assert.ElementsMatch(t, []string{"CH-1", "CH-2"}, stock.ItemIDs)
}

func TestMintedIDUniqueAcrossEntries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, pendingChairs("CH-1"))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID)
	require.NoError(t, err)

	// CH-1 is now in stock; minting it again is rejected at create
	_, err = svc.Create(ctx, pendingChairs("CH-1"))
	assert.Equal(t, apperr.KindDuplicateIdentifier, apperr.KindOf(err))
}

func TestRejectMovesEntryToSink(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, pendingChairs("CH-1"))
	require.NoError(t, err)

	err = svc.Reject(ctx, e.ID, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.Reject(ctx, e.ID, "bill mismatch"))

	// nothing reached the ledger
	_, err = repos.Stock.Get(ctx, chairKey())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	rejections, err := repos.Rejections.List(ctx)
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, models.ActionEntryRejected, rejections[0].Action)
	assert.Equal(t, "bill mismatch", rejections[0].Remarks)
}
