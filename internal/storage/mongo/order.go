package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dhruvnair/bazaarkart/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by a MongoDB orders
// collection. Line items are embedded snapshots; the order document is the
// system of record from creation on.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository returns an OrderRepository over the given database.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(collOrders)}
}

type orderItemDoc struct {
	ProductID string               `bson:"productId"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
	Image     string               `bson:"image"`
}

type customerDoc struct {
	Name    string `bson:"name"`
	Email   string `bson:"email"`
	Phone   string `bson:"phone"`
	Address string `bson:"address"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	Pincode string `bson:"pincode"`
}

type orderDoc struct {
	ID            string               `bson:"_id"`
	Items         []orderItemDoc       `bson:"items"`
	Customer      customerDoc          `bson:"customer"`
	Subtotal      primitive.Decimal128 `bson:"subtotal"`
	Tax           primitive.Decimal128 `bson:"tax"`
	TotalAmount   primitive.Decimal128 `bson:"totalAmount"`
	PaymentMethod string               `bson:"paymentMethod"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"createdAt"`
	DeliveredAt   *time.Time           `bson:"deliveredAt,omitempty"`
}

func toOrderDoc(o *order.Order) orderDoc {
	doc := orderDoc{
		ID:            o.ID,
		Customer:      customerDoc(o.Customer),
		Subtotal:      toMoney(o.Subtotal),
		Tax:           toMoney(o.Tax),
		TotalAmount:   toMoney(o.TotalAmount),
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		DeliveredAt:   o.DeliveredAt,
		Items:         make([]orderItemDoc, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		doc.Items = append(doc.Items, orderItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     toMoney(it.Price),
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return doc
}

func (d orderDoc) toDomain() order.Order {
	o := order.Order{
		ID:            d.ID,
		Customer:      order.Customer(d.Customer),
		Subtotal:      fromMoney(d.Subtotal),
		Tax:           fromMoney(d.Tax),
		TotalAmount:   fromMoney(d.TotalAmount),
		PaymentMethod: d.PaymentMethod,
		Status:        order.Status(d.Status),
		CreatedAt:     d.CreatedAt,
		DeliveredAt:   d.DeliveredAt,
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     fromMoney(it.Price),
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}
	return o
}

// Create persists a new order document.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	if _, err := r.coll.InsertOne(ctx, toOrderDoc(o)); err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}
	return nil
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var doc orderDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}
	o := doc.toDomain()
	return &o, nil
}

// ListByEmail returns a customer's orders, newest first.
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]order.Order, error) {
	return r.list(ctx, bson.M{"customer.email": email})
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *OrderRepository) list(ctx context.Context, filter bson.M) ([]order.Order, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding orders")
	}

	orders := make([]order.Order, len(docs))
	for i, d := range docs {
		orders[i] = d.toDomain()
	}
	return orders, nil
}

// TransitionStatus applies a status change guarded by the expected current
// status, in a single conditional update. A guard miss is reported as
// ErrStatusChanged so the caller can re-read and decide; a missing order is
// ErrNotFound.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id string, from, to order.Status, deliveredAt *time.Time) error {
	set := bson.M{"status": string(to)}
	if deliveredAt != nil {
		set["deliveredAt"] = *deliveredAt
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(from)},
		bson.M{"$set": set},
	)
	if err != nil {
		return errors.Wrapf(err, "transitioning order %q", id)
	}
	if res.MatchedCount == 0 {
		// Distinguish a vanished order from a concurrent status change.
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return errors.Wrapf(err, "transitioning order %q", id)
		}
		if n == 0 {
			return order.ErrNotFound
		}
		return order.ErrStatusChanged
	}
	return nil
}
