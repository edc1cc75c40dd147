package orders

import (
	"context"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/orders/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

const collectionOrders = "orders"

// Repository persists orders in the document store keyed by order id.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func orderPred(fn func(model.Order) bool) docstore.Predicate {
	return func(doc docstore.Document) bool {
		var o model.Order
		if docstore.Decode(doc, &o) != nil {
			return false
		}
		return fn(o)
	}
}

// Get returns an order and its storage revision.
func (r *Repository) Get(ctx context.Context, id string) (model.Order, int64, error) {
	doc, err := r.store.Get(ctx, collectionOrders, id)
	if err != nil {
		return model.Order{}, 0, err
	}
	var o model.Order
	if err := docstore.Decode(doc, &o); err != nil {
		return model.Order{}, 0, platformerrors.Wrap(
			platformerrors.KindStorage, "orders.repo.get", "decode failed", err)
	}
	return o, doc.Rev, nil
}

// Find returns orders matching the filter in stable key order.
func (r *Repository) Find(ctx context.Context, fn func(model.Order) bool) ([]model.Order, error) {
	docs, err := r.store.FindMany(ctx, collectionOrders, orderPred(fn))
	if err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(docs))
	for _, doc := range docs {
		var o model.Order
		if err := docstore.Decode(doc, &o); err != nil {
			return nil, platformerrors.Wrap(
				platformerrors.KindStorage, "orders.repo.find", "decode failed", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Insert stores a new order.
func (r *Repository) Insert(ctx context.Context, o model.Order) error {
	data, err := docstore.Encode(o)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "orders.repo.insert", "encode failed", err)
	}
	_, err = r.store.Insert(ctx, collectionOrders, o.ID, data)
	return err
}

// Replace rewrites an order only when its revision still matches.
func (r *Repository) Replace(ctx context.Context, o model.Order, expectedRev int64) error {
	data, err := docstore.Encode(o)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "orders.repo.replace", "encode failed", err)
	}
	_, err = r.store.ReplaceIf(ctx, collectionOrders, o.ID, data, expectedRev)
	return err
}

// Delete removes an order, reporting whether it existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := r.store.Delete(ctx, collectionOrders, func(doc docstore.Document) bool {
		return doc.Key == id
	})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
