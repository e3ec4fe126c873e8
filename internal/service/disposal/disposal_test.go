package disposal

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

// newTestService seeds purchase history and two dispose-eligible chair
// returns, the state the HOO gate leaves behind.
func newTestService(t *testing.T) (*Service, *repository.Store, []primitive.ObjectID) {
	t.Helper()
	repos := memory.New().Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Purchases.Insert(ctx, &models.PurchaseRecord{
		ItemKey: chairKey(), QuantityReceived: 5, ItemIDs: []string{"CH-1", "CH-2", "CH-3", "CH-4", "CH-5"},
	}))

	var eligible []primitive.ObjectID
	for _, unitID := range []string{"CH-4", "CH-5"} {
		rec := &models.ReturnedRecord{
			ItemKey: chairKey(),
			Source:  "Hostel",
			ItemID:  unitID,
			State:   models.ReturnDisposeEligible,
		}
		require.NoError(t, repos.Returns.Insert(ctx, rec))
		eligible = append(eligible, rec.ID)
	}

	return NewService(repos, nil, nil), repos, eligible
}

func TestRequestLocksReturns(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	pd, err := svc.Request(ctx, chairKey(), eligible, models.DisposalMeta{Method: "auction"})
	require.NoError(t, err)
	assert.Equal(t, 2, pd.Quantity)
	assert.ElementsMatch(t, []string{"CH-4", "CH-5"}, pd.ItemIDs)

	for _, id := range eligible {
		rec, err := repos.Returns.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ReturnDisposeLocked, rec.State)
	}

	// a locked return cannot enter a second disposal
	_, err = svc.Request(ctx, chairKey(), eligible[:1], models.DisposalMeta{})
	assert.Equal(t, apperr.KindPreconditionFailed, apperr.KindOf(err))
}

func TestRequestUnwindsOnPartialFailure(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	// second id names a record that is not eligible
	bogus := append([]primitive.ObjectID{eligible[0]}, primitive.NewObjectID())
	_, err := svc.Request(ctx, chairKey(), bogus, models.DisposalMeta{})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// the first lock was released
	rec, err := repos.Returns.Get(ctx, eligible[0])
	require.NoError(t, err)
	assert.Equal(t, models.ReturnDisposeEligible, rec.State)
}

func TestDisposeRetiresUnitsAndRegister(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	pd, err := svc.Request(ctx, chairKey(), eligible, models.DisposalMeta{Method: "scrap"})
	require.NoError(t, err)

	disposed, err := svc.Dispose(ctx, pd.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CH-4", "CH-5"}, disposed.ItemIDs)

	// locked returns are gone
	for _, id := range eligible {
		_, err := repos.Returns.Get(ctx, id)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	}

	// register seeded from the source collections on first disposal
	entry, err := repos.DeadStock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 5, entry.OverallQuantity)
	assert.Equal(t, 2, entry.CondemnedQuantity)
	assert.Equal(t, 0, entry.ServicableQuantity)

	// disposal consumed exactly once
	_, err = svc.Dispose(ctx, pd.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDisposeIncrementsExistingRegister(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	require.NoError(t, repos.DeadStock.Upsert(ctx, &models.DeadStockEntry{
		ItemKey: chairKey(), OverallQuantity: 5, CondemnedQuantity: 1,
	}))

	pd, err := svc.Request(ctx, chairKey(), eligible[:1], models.DisposalMeta{})
	require.NoError(t, err)
	_, err = svc.Dispose(ctx, pd.ID)
	require.NoError(t, err)

	entry, err := repos.DeadStock.Get(ctx, chairKey())
	require.NoError(t, err)
	assert.Equal(t, 2, entry.CondemnedQuantity)
}

func TestCancelUnlocksReturns(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	pd, err := svc.Request(ctx, chairKey(), eligible, models.DisposalMeta{})
	require.NoError(t, err)

	err = svc.Cancel(ctx, pd.ID, "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, svc.Cancel(ctx, pd.ID, "wrong batch"))

	for _, id := range eligible {
		rec, err := repos.Returns.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ReturnDisposeEligible, rec.State)
		assert.True(t, rec.RejectedDisposal)
	}

	rejections, err := repos.Rejections.List(ctx)
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, models.ActionDisposalCancelled, rejections[0].Action)

	// the units are eligible for a fresh request
	_, err = svc.Request(ctx, chairKey(), eligible, models.DisposalMeta{})
	assert.NoError(t, err)
}

func TestCancelRollsBackWhenUnlockFails(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	pd, err := svc.Request(ctx, chairKey(), eligible, models.DisposalMeta{})
	require.NoError(t, err)

	// one locked return vanishes underneath the cancellation
	_, err = repos.Returns.Delete(ctx, eligible[1], models.ReturnDisposeLocked)
	require.NoError(t, err)

	err = svc.Cancel(ctx, pd.ID, "wrong batch")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// the disposal still owns its remaining lock
	_, err = svc.Get(ctx, pd.ID)
	require.NoError(t, err)
	rec, err := repos.Returns.Get(ctx, eligible[0])
	require.NoError(t, err)
	assert.Equal(t, models.ReturnDisposeLocked, rec.State)

	// nothing reached the rejection sink
	rejections, err := repos.Rejections.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rejections)
}

func TestBuildingDisposalSkipsRegister(t *testing.T) {
	svc, repos, _ := newTestService(t)
	ctx := context.Background()

	key := models.ItemKey{
		AssetType:       models.AssetPermanent,
		AssetCategory:   "Building",
		ItemName:        "Old Hostel Block",
		ItemDescription: "Two storey annexe",
	}
	pd, err := svc.RequestBuilding(ctx, key, models.BuildingDisposal{
		Name: "Old Hostel Block", Location: "North campus", DemolitionEstimate: 120000,
	}, models.DisposalMeta{Method: "demolition"})
	require.NoError(t, err)

	disposed, err := svc.Dispose(ctx, pd.ID)
	require.NoError(t, err)
	require.NotNil(t, disposed.Building)

	_, err = repos.DeadStock.Get(ctx, key)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRequestRejectsForeignReturns(t *testing.T) {
	svc, repos, eligible := newTestService(t)
	ctx := context.Background()

	otherKey := models.ItemKey{
		AssetType:       models.AssetPermanent,
		AssetCategory:   "Electronics",
		ItemName:        "Projector",
		ItemDescription: "Ceiling mounted",
	}
	_, err := svc.Request(ctx, otherKey, eligible[:1], models.DisposalMeta{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// the mismatched lock was rolled back
	rec, getErr := repos.Returns.Get(ctx, eligible[0])
	require.NoError(t, getErr)
	assert.Equal(t, models.ReturnDisposeEligible, rec.State)
}
