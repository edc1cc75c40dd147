// Package orders manages print job records and derives their cost from
// the material catalog.
package orders

import (
	"context"

	"github.com/google/uuid"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/inventory"
	"forge-server-go/internal/domain/orders/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

// Order is re-exported for transport code.
type Order = model.Order

// Logger is the logging interface used across the domain.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// MaterialCatalog is the slice of the inventory service the cost
// calculator needs: looking up materials by kind and color.
type MaterialCatalog interface {
	SearchMaterials(ctx context.Context, filter inventory.MaterialFilter) ([]inventory.Material, error)
}

// Options encapsulates the dependencies required to construct a Service.
type Options struct {
	Store     docstore.Store
	Materials MaterialCatalog
	Logger    Logger
}

// Service owns order records and the cost calculator.
type Service struct {
	repo      *Repository
	materials MaterialCatalog
	logger    Logger
}

// NewService wires a Service using the supplied options.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "orders.new", "orders service requires a store")
	}
	if opts.Materials == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "orders.new", "orders service requires a material catalog")
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "orders.new", "orders service requires a logger")
	}
	return &Service{
		repo:      NewRepository(opts.Store),
		materials: opts.Materials,
		logger:    opts.Logger,
	}, nil
}

// Add validates and stores a new order. The cost is not computed here;
// callers price the order explicitly through ComputeCost.
func (s *Service) Add(ctx context.Context, o model.Order) (model.Order, error) {
	o.TotalCost = 0
	if err := o.Validate(); err != nil {
		return model.Order{}, err
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		return model.Order{}, err
	}
	s.logger.Info("added order %s for %s", o.ID, o.ObjectName)
	return o, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id string) (model.Order, error) {
	o, _, err := s.repo.Get(ctx, id)
	return o, err
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]model.Order, error) {
	return s.repo.Find(ctx, func(model.Order) bool { return true })
}

// Filter narrows an order search; empty fields match anything.
type Filter struct {
	ObjectName   string
	Color        string
	MaterialType string
}

// Search returns orders matching every non-empty filter field.
func (s *Service) Search(ctx context.Context, filter Filter) ([]model.Order, error) {
	return s.repo.Find(ctx, func(o model.Order) bool {
		if filter.ObjectName != "" && o.ObjectName != filter.ObjectName {
			return false
		}
		if filter.Color != "" && o.Color != filter.Color {
			return false
		}
		if filter.MaterialType != "" && string(o.MaterialType) != filter.MaterialType {
			return false
		}
		return true
	})
}

// UpdateAddress changes the shipping address under optimistic concurrency.
func (s *Service) UpdateAddress(ctx context.Context, id, address string) (model.Order, error) {
	const op = "orders.update_address"
	if address == "" {
		return model.Order{}, platformerrors.New(
			platformerrors.KindInvalid, op, "shipping address is required")
	}
	for attempt := 0; attempt < casAttempts; attempt++ {
		o, rev, err := s.repo.Get(ctx, id)
		if err != nil {
			return model.Order{}, err
		}
		o.Address = address
		if err := s.repo.Replace(ctx, o, rev); err != nil {
			if platformerrors.IsKind(err, platformerrors.KindConflict) {
				continue
			}
			return model.Order{}, err
		}
		return o, nil
	}
	return model.Order{}, platformerrors.New(
		platformerrors.KindConflict, op, "too much contention on order "+id)
}

// Delete removes an order by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return platformerrors.New(
			platformerrors.KindNotFound, "orders.delete", "order not found: "+id)
	}
	return nil
}
