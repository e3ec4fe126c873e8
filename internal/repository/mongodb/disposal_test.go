package mongodb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func markOne(doc bson.M, field string, want map[string]struct{}) map[string]struct{} {
	found := make(map[string]struct{})
	markIDs(doc, strings.Split(field, "."), want, found)
	return found
}

func TestMarkIDsOnlyMatchesNamedField(t *testing.T) {
	want := map[string]struct{}{"CH-1": {}, "CH-2": {}}

	// an item whose name collides with a wanted id must not count
	doc := bson.M{
		"itemName": "CH-1",
		"itemIds":  bson.A{"CH-2", "CH-9"},
	}
	found := markOne(doc, "itemIds", want)
	assert.NotContains(t, found, "CH-1")
	assert.Contains(t, found, "CH-2")
}

func TestMarkIDsWalksNestedArrays(t *testing.T) {
	want := map[string]struct{}{"CH-1": {}, "CH-2": {}, "CH-3": {}}

	doc := bson.M{
		"itemName": "Chair",
		"issues": bson.A{
			bson.M{"issuedTo": "CH-3", "issuedIds": bson.A{"CH-1"}},
			bson.M{"issuedTo": "Hostel", "issuedIds": bson.A{"CH-2"}},
		},
	}
	found := markOne(doc, "issues.issuedIds", want)
	assert.Contains(t, found, "CH-1")
	assert.Contains(t, found, "CH-2")
	// issuedTo sits off the path even though it holds a wanted value
	assert.NotContains(t, found, "CH-3")
}

func TestMarkIDsScalarField(t *testing.T) {
	want := map[string]struct{}{"CH-7": {}}

	found := markOne(bson.M{"itemId": "CH-7", "source": "Hostel"}, "itemId", want)
	assert.Contains(t, found, "CH-7")

	found = markOne(bson.M{"itemId": "CH-8", "remarks": "CH-7"}, "itemId", want)
	assert.Empty(t, found)
}
