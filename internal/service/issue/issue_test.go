package issue

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
	ctx := context.Background()
	require.NoError(t, repos.Stock.Credit(ctx, chairKey(), 3, []string{"CH-1", "CH-2", "CH-3"}))
	require.NoError(t, repos.Stock.Credit(ctx, penKey(), 50, nil))
	return NewService(repos, nil, nil), repos
}

func TestCreateDebitsStockEagerly(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	issue, err := svc.Create(ctx, Request{
		Key: chairKey(), IssuedTo: "Faculty Block", Quantity: 2, ItemIDs: []string{"CH-1", "CH-2"},
	})
	require.NoError(t, err)

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 1, stock.InStock)
	assert.ElementsMatch(t, []string{"CH-3"}, stock.ItemIDs)
	assert.False(t, issue.Acknowledged)
}

func TestCreateInsufficientStock(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 80})
	assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))

	// failed debit staged nothing
	issues, listErr := repos.Issues.List(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, issues)
}

func TestApproveRequiresAcknowledgement(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	issue, err := svc.Create(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 10})
	require.NoError(t, err)

	err = svc.Approve(ctx, issue.ID)
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))

	require.NoError(t, svc.Acknowledge(ctx, issue.ID, "https://files/receipt.pdf"))
	require.NoError(t, svc.Approve(ctx, issue.ID))

	rec, err := repos.Issued.Get(ctx, penKey())
	require.NoError(t, err)
	require.NotNil(t, rec.Line("Hostel"))
	assert.Equal(t, 10, rec.Line("Hostel").Quantity)

	// second approve: the pending issue is gone
	err = svc.Approve(ctx, issue.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApproveMergesLinesPerLocation(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		issue, err := svc.Create(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 5})
		require.NoError(t, err)
		require.NoError(t, svc.Acknowledge(ctx, issue.ID, "https://files/r.pdf"))
		require.NoError(t, svc.Approve(ctx, issue.ID))
	}

	rec, err := repos.Issued.Get(ctx, penKey())
	require.NoError(t, err)
	require.Len(t, rec.Issues, 1)
	assert.Equal(t, 10, rec.Issues[0].Quantity)
}

func TestRejectRestoresStock(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	issue, err := svc.Create(ctx, Request{
		Key: chairKey(), IssuedTo: "Faculty Block", Quantity: 2, ItemIDs: []string{"CH-1", "CH-2"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, issue.ID, "not sanctioned"))

	stock, err := repos.Stock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 3, stock.InStock)
	assert.ElementsMatch(t, []string{"CH-1", "CH-2", "CH-3"}, stock.ItemIDs)

	rejections, err := repos.Rejections.List(ctx)
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, models.ActionIssueRejected, rejections[0].Action)
}

func TestAcknowledgeOverwritesReceipt(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	issue, err := svc.Create(ctx, Request{Key: penKey(), IssuedTo: "Hostel", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Acknowledge(ctx, issue.ID, "https://files/v1.pdf"))
	require.NoError(t, svc.Acknowledge(ctx, issue.ID, "https://files/v2.pdf"))

	got, err := repos.Issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files/v2.pdf", got.ReceiptURL)

	err = svc.Acknowledge(ctx, issue.ID, "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
