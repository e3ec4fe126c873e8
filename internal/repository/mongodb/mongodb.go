// Package mongodb backs the engine's repositories with MongoDB. Every state
// flip is a conditional single-document update: the filter carries the
// expected current state, so racing actors serialize on the database and the
// loser sees a precondition failure instead of double-applying.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository"
)

// Store owns the MongoDB connection and hands out repository views.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Collection names.
const (
	collStock        = "stocks"
	collEntries      = "pending_entries"
	collPurchases    = "purchase_records"
	collIssues       = "pending_issues"
	collIssued       = "issued_records"
	collReturns      = "returned_records"
	collStoreReturns = "store_returns"
	collServiced     = "serviced_pending"
	collHistory      = "service_history"
	collExchanges    = "exchanged_consumables"
	collDisposals    = "pending_disposals"
	collDisposed     = "disposed_assets"
	collDeadStock    = "dead_stock_register"
	collRejections   = "rejected_assets"
)

// Connect opens and pings the database.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Repositories returns the repository bundle backed by this connection.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Stock:        &stockRepo{s},
		Entries:      &entryRepo{s},
		Purchases:    &purchaseRepo{s},
		Issues:       &issueRepo{s},
		Issued:       &issuedRepo{s},
		Returns:      &returnRepo{s},
		StoreReturns: &storeReturnRepo{s},
		Serviced:     &servicedRepo{s},
		Exchanges:    &exchangeRepo{s},
		Disposals:    &disposalRepo{s},
		Disposed:     &disposedRepo{s},
		DeadStock:    &deadStockRepo{s},
		Rejections:   &rejectionRepo{s},
		UnitIDs:      &unitIDRepo{s},
	}
}

// EnsureIndexes creates the indexes the conditional updates rely on. The
// unique compound key index is what makes one-stock-line-per-item hold under
// concurrent credits.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	keyIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "assetType", Value: 1},
			{Key: "assetCategory", Value: 1},
			{Key: "subCategory", Value: 1},
			{Key: "itemName", Value: 1},
			{Key: "itemDescription", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []string{collStock, collIssued, collDeadStock} {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, keyIndex); err != nil {
			return fmt.Errorf("failed to index %s: %w", coll, err)
		}
	}

	stateIndex := mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}}}
	if _, err := s.db.Collection(collReturns).Indexes().CreateOne(ctx, stateIndex); err != nil {
		return fmt.Errorf("failed to index %s: %w", collReturns, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// keyFilter builds the canonical composite-key filter. Empty sub-categories
// match documents where the field was omitted.
func keyFilter(key models.ItemKey) bson.M {
	key = key.Normalize()
	filter := bson.M{
		"assetType":       key.AssetType,
		"assetCategory":   key.AssetCategory,
		"itemName":        key.ItemName,
		"itemDescription": key.ItemDescription,
	}
	if key.SubCategory == "" {
		filter["subCategory"] = bson.M{"$in": bson.A{"", nil}}
	} else {
		filter["subCategory"] = key.SubCategory
	}
	return filter
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
