package inventory

import (
	"context"

	"github.com/google/uuid"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/inventory/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

// Exported aliases so transport code can stay inside this package's surface.
type (
	Material = model.Material
	Printer  = model.Printer
	Kind     = model.Kind
)

// Logger is the logging interface used across the domain.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Options encapsulates the dependencies required to construct a Service.
type Options struct {
	Store  docstore.Store
	Logger Logger
}

// Service owns material and printer records and the allocation engine.
type Service struct {
	repo   *Repository
	logger Logger
}

// NewService wires a Service using the supplied options.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "inventory.new", "inventory service requires a store")
	}
	if opts.Logger == nil {
		return nil, platformerrors.New(
			platformerrors.KindBootstrap, "inventory.new", "inventory service requires a logger")
	}
	return &Service{
		repo:   NewRepository(opts.Store),
		logger: opts.Logger,
	}, nil
}

// MaterialFilter narrows a material search; empty fields match anything.
type MaterialFilter struct {
	Name  string
	Kind  string
	Color string
}

// PrinterFilter narrows a printer search; empty fields match anything.
type PrinterFilter struct {
	ID         string
	Name       string
	Resolution string
}

// PrinterUpdate is a partial printer patch; nil fields are left untouched.
type PrinterUpdate struct {
	Name               *string
	Resolution         *string
	MaxDimensions      *string
	Price              *float64
	Status             *string
	ResinTankCapacity  *float64
	LightSource        *string
	FilamentDiameter   *float64
	SupportedMaterials []string
}

// AddMaterial validates and stores a new material.
func (s *Service) AddMaterial(ctx context.Context, m model.Material) (model.Material, error) {
	if err := m.Validate(); err != nil {
		return model.Material{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := s.repo.InsertMaterial(ctx, m); err != nil {
		return model.Material{}, err
	}
	s.logger.Info("added %s material %s (%s)", m.Kind, m.Name, m.ID)
	return m, nil
}

// ListMaterials returns all materials, optionally restricted to one kind.
func (s *Service) ListMaterials(ctx context.Context, kind string) ([]model.Material, error) {
	if kind == "" {
		return s.repo.FindMaterials(ctx, func(model.Material) bool { return true })
	}
	parsed, err := model.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.repo.FindMaterials(ctx, func(m model.Material) bool {
		return m.Kind == parsed
	})
}

// SearchMaterials returns materials matching every non-empty filter field.
func (s *Service) SearchMaterials(ctx context.Context, filter MaterialFilter) ([]model.Material, error) {
	return s.repo.FindMaterials(ctx, func(m model.Material) bool {
		if filter.Name != "" && m.Name != filter.Name {
			return false
		}
		if filter.Kind != "" && string(m.Kind) != filter.Kind {
			return false
		}
		if filter.Color != "" && m.Color != filter.Color {
			return false
		}
		return true
	})
}

// DeleteMaterialsByName removes all materials carrying the given name.
func (s *Service) DeleteMaterialsByName(ctx context.Context, name string) (int64, error) {
	deleted, err := s.repo.DeleteMaterialsByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, platformerrors.New(
			platformerrors.KindNotFound, "inventory.delete_material", "material not found: "+name)
	}
	return deleted, nil
}

// AddPrinter validates and stores a new printer.
func (s *Service) AddPrinter(ctx context.Context, p model.Printer) (model.Printer, error) {
	if p.Status == "" {
		p.Status = model.StatusIdle
	}
	if err := p.Validate(); err != nil {
		return model.Printer{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.InsertPrinter(ctx, p); err != nil {
		return model.Printer{}, err
	}
	s.logger.Info("added %s printer %s (%s)", p.Type, p.Name, p.ID)
	return p, nil
}

// GetPrinter returns a printer by id.
func (s *Service) GetPrinter(ctx context.Context, id string) (model.Printer, error) {
	p, _, err := s.repo.GetPrinter(ctx, id)
	return p, err
}

// ListPrinters returns all printers, optionally restricted to one type.
func (s *Service) ListPrinters(ctx context.Context, kind string) ([]model.Printer, error) {
	if kind == "" {
		return s.repo.FindPrinters(ctx, func(model.Printer) bool { return true })
	}
	parsed, err := model.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.repo.FindPrinters(ctx, func(p model.Printer) bool {
		return p.Type == parsed
	})
}

// SearchPrinters returns printers matching every non-empty filter field.
func (s *Service) SearchPrinters(ctx context.Context, filter PrinterFilter) ([]model.Printer, error) {
	return s.repo.FindPrinters(ctx, func(p model.Printer) bool {
		if filter.ID != "" && p.ID != filter.ID {
			return false
		}
		if filter.Name != "" && p.Name != filter.Name {
			return false
		}
		if filter.Resolution != "" && p.Resolution != filter.Resolution {
			return false
		}
		return true
	})
}

// UpdatePrinter applies a partial patch under optimistic concurrency.
func (s *Service) UpdatePrinter(ctx context.Context, id string, update PrinterUpdate) (model.Printer, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		p, rev, err := s.repo.GetPrinter(ctx, id)
		if err != nil {
			return model.Printer{}, err
		}

		if update.Name != nil {
			p.Name = *update.Name
		}
		if update.Resolution != nil {
			p.Resolution = *update.Resolution
		}
		if update.MaxDimensions != nil {
			p.MaxDimensions = *update.MaxDimensions
		}
		if update.Price != nil {
			p.Price = *update.Price
		}
		if update.Status != nil {
			status, err := model.ParsePrinterStatus(*update.Status)
			if err != nil {
				return model.Printer{}, err
			}
			p.Status = status
		}
		if update.ResinTankCapacity != nil {
			p.ResinTankCapacity = *update.ResinTankCapacity
		}
		if update.LightSource != nil {
			p.LightSource = *update.LightSource
		}
		if update.FilamentDiameter != nil {
			p.FilamentDiameter = *update.FilamentDiameter
		}
		if update.SupportedMaterials != nil {
			p.SupportedMaterials = update.SupportedMaterials
		}

		if err := p.Validate(); err != nil {
			return model.Printer{}, err
		}
		if err := s.repo.ReplacePrinter(ctx, p, rev); err != nil {
			if platformerrors.IsKind(err, platformerrors.KindConflict) {
				continue
			}
			return model.Printer{}, err
		}
		return p, nil
	}
	return model.Printer{}, platformerrors.New(
		platformerrors.KindConflict, "inventory.update_printer", "too much contention on printer")
}

// DeletePrinter removes a printer by id.
func (s *Service) DeletePrinter(ctx context.Context, id string) error {
	existed, err := s.repo.DeletePrinter(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return platformerrors.New(
			platformerrors.KindNotFound, "inventory.delete_printer", "printer not found: "+id)
	}
	return nil
}
