package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/apperr"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
)

func TestIssuedDebitConsumableRejectsUnitIDs(t *testing.T) {
	repos := New().Repositories()
	ctx := context.Background()
	key := models.ItemKey{
		AssetType:       models.AssetConsumable,
		AssetCategory:   "Stationery",
		ItemName:        "Pen",
		ItemDescription: "Blue ballpoint",
	}

	require.NoError(t, repos.Issued.Merge(ctx, key, models.IssueLine{IssuedTo: "Hostel", Quantity: 10}))

	err := repos.Issued.Debit(ctx, key, "Hostel", 5, []string{"P-1"})
	assert.Equal(t, apperr.KindInvalidIdentifierSet, apperr.KindOf(err))

	// the line is untouched after the refused debit
	rec, err := repos.Issued.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Line("Hostel").Quantity)

	require.NoError(t, repos.Issued.Debit(ctx, key, "Hostel", 5, nil))
}
