// Command seed-db loads the product catalog into MongoDB. By default it
// seeds the embedded catalog; pass -products-file to seed a different one.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dhruvnair/bazaarkart/db"
	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
	"github.com/dhruvnair/bazaarkart/internal/storage/mongo"
)

func main() {
	var (
		mongoURI     string
		mongoDB      string
		productsFile string
	)

	flag.StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (or MONGODB_URI env)")
	flag.StringVar(&mongoDB, "mongo-database", "bazaarkart", "MongoDB database name")
	flag.StringVar(&productsFile, "products-file", "", "path to a products JSON file (default: embedded catalog)")
	flag.Parse()

	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}
	if mongoURI == "" {
		slog.Error("mongo URI is required: set -mongo-uri or MONGODB_URI")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, mongoURI, mongoDB, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, mongoURI, mongoDB, productsFile string) error {
	products, err := loadProducts(productsFile)
	if err != nil {
		return err
	}

	slog.Info("connecting to mongodb")

	client, err := mongo.Connect(ctx, mongoURI)
	if err != nil {
		return errors.Wrap(err, "connect mongodb")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	database := client.Database(mongoDB)
	if err := mongo.EnsureIndexes(ctx, database); err != nil {
		return errors.Wrap(err, "ensure indexes")
	}

	repo := mongo.NewProductRepository(database)

	slog.Info("upserting products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range products {
		p := &products[i]
		g.Go(func() error {
			if err := repo.Upsert(ctx, p); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
			return nil
		})
	}
	return g.Wait()
}

func loadProducts(productsFile string) ([]catalog.Product, error) {
	if productsFile == "" {
		slog.Info("using embedded catalog")
		return db.FallbackCatalog()
	}

	slog.Info("reading products file", slog.String("path", productsFile))
	data, err := os.ReadFile(productsFile)
	if err != nil {
		return nil, errors.Wrap(err, "read products file")
	}
	return catalog.ParseFallback(data)
}
