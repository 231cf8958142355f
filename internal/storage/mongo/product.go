package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dhruvnair/bazaarkart/internal/domain/catalog"
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by a MongoDB
// products collection with embedded reviews.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository returns a ProductRepository over the given database.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(collProducts)}
}

type reviewDoc struct {
	User    string    `bson:"user"`
	Rating  int       `bson:"rating"`
	Comment string    `bson:"comment"`
	Date    time.Time `bson:"date"`
}

type productDoc struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description"`
	Price         primitive.Decimal128 `bson:"price"`
	OriginalPrice primitive.Decimal128 `bson:"originalPrice"`
	Discount      int                  `bson:"discount"`
	InStock       int                  `bson:"inStock"`
	Category      string               `bson:"category"`
	Rating        float64              `bson:"rating"`
	ReviewCount   int                  `bson:"reviewCount"`
	Image         string               `bson:"image"`
	Reviews       []reviewDoc          `bson:"reviews"`
}

func toProductDoc(p *catalog.Product) productDoc {
	doc := productDoc{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         toMoney(p.Price),
		OriginalPrice: toMoney(p.OriginalPrice),
		Discount:      p.Discount,
		InStock:       p.InStock,
		Category:      p.Category,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Image:         p.Image,
		Reviews:       make([]reviewDoc, 0, len(p.Reviews)),
	}
	for _, r := range p.Reviews {
		doc.Reviews = append(doc.Reviews, reviewDoc(r))
	}
	return doc
}

func (d productDoc) toDomain() catalog.Product {
	p := catalog.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Price:         fromMoney(d.Price),
		OriginalPrice: fromMoney(d.OriginalPrice),
		Discount:      d.Discount,
		InStock:       d.InStock,
		Category:      d.Category,
		Rating:        d.Rating,
		ReviewCount:   d.ReviewCount,
		Image:         d.Image,
	}
	for _, r := range d.Reviews {
		p.Reviews = append(p.Reviews, catalog.Review(r))
	}
	return p
}

// List returns the full catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding products")
	}

	products := make([]catalog.Product, len(docs))
	for i, d := range docs {
		products[i] = d.toDomain()
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", id)
	}
	p := doc.toDomain()
	return &p, nil
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	if _, err := r.coll.InsertOne(ctx, toProductDoc(p)); err != nil {
		return errors.Wrapf(err, "creating product %q", p.ID)
	}
	return nil
}

// Upsert inserts the product or replaces it wholesale if it already exists.
// Used by the seeder; the API never upserts.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": p.ID},
		toProductDoc(p),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrapf(err, "upserting product %q", p.ID)
	}
	return nil
}

// Replace updates the mutable product fields and returns the updated
// product. Reviews and the derived rating/reviewCount pair are untouched.
func (r *ProductRepository) Replace(ctx context.Context, id string, u catalog.Update) (*catalog.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":          u.Name,
		"description":   u.Description,
		"price":         toMoney(u.Price),
		"originalPrice": toMoney(u.OriginalPrice),
		"discount":      u.Discount,
		"inStock":       u.InStock,
		"category":      u.Category,
		"image":         u.Image,
	}}
	return r.findOneAndUpdate(ctx, id, update)
}

// Delete removes a product document.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "deleting product %q", id)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// AddReview appends a review and recomputes rating and reviewCount in one
// atomic pipeline update, so count and average can never disagree.
func (r *ProductRepository) AddReview(ctx context.Context, id string, review catalog.Review) (*catalog.Product, error) {
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				bson.A{reviewDoc(review)},
			}},
		}}},
		bson.D{{Key: "$set", Value: bson.M{
			"reviewCount": bson.M{"$size": "$reviews"},
			"rating":      bson.M{"$avg": "$reviews.rating"},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, update)
}

// DecrementStock subtracts quantity from the stock counter, clamped at zero,
// in one atomic pipeline update. Over-decrement is not an error.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int) (*catalog.Product, error) {
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"inStock": bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{"$inStock", quantity}},
			}},
		}}},
	}
	return r.findOneAndUpdate(ctx, id, update)
}

func (r *ProductRepository) findOneAndUpdate(ctx context.Context, id string, update any) (*catalog.Product, error) {
	var doc productDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "updating product %q", id)
	}
	p := doc.toDomain()
	return &p, nil
}
