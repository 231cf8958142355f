// Package mongo implements the catalog and order repositories on MongoDB.
// Products embed their reviews in a single document, so the
// rating/reviewCount invariant and the stock clamp are enforced with
// single-document atomic updates; no multi-document transaction is needed.
package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collProducts = "products"
	collOrders   = "orders"

	connectTimeout = 10 * time.Second
)

// Connect establishes a MongoDB client and verifies connectivity with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongodb")
	}
	return client, nil
}

// toMoney stores a decimal amount as BSON Decimal128 so money round-trips
// exactly instead of through a double. Every amount the boundary produces
// fits Decimal128, so the parse cannot fail for values we write.
func toMoney(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}
	}
	return v
}

// fromMoney is the inverse of toMoney. Values written by toMoney always
// parse; anything else decodes as zero rather than corrupting an amount.
func fromMoney(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// EnsureIndexes creates the indexes the repositories rely on: unique order
// IDs are the _id key already; the customer order list needs an email index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: map[string]int{"customer.email": 1},
	})
	if err != nil {
		return errors.Wrap(err, "create order email index")
	}
	return nil
}
