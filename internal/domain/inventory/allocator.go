package inventory

import (
	"context"

	"forge-server-go/internal/domain/eventbus"
	"forge-server-go/internal/domain/inventory/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

// LowStockThreshold is the remaining quantity above which a printer's
// loaded filament is considered healthy and no substitution happens.
const LowStockThreshold = 100.0

// reserveAttempts bounds the optimistic retry loops for stock
// reservation and printer reassignment.
const reserveAttempts = 5

// ChangeResult reports the outcome of a filament change.
type ChangeResult struct {
	MaterialID   string  `json:"material_id"`
	MaterialName string  `json:"material_name"`
	Remaining    float64 `json:"remaining_quantity"`
	Changed      bool    `json:"changed"`
}

// ChangeFilament checks the filament loaded in a printer and, when the
// stock is low or the color is wrong, reserves quantity units of a
// compatible replacement spool and loads it. Compatibility means an
// exact match on the printer's filament diameter and the requested
// color. When the loaded spool already satisfies both the threshold
// and the color, nothing is mutated.
func (s *Service) ChangeFilament(ctx context.Context, printerID, color string, quantity float64) (ChangeResult, error) {
	const op = "inventory.change_filament"

	if quantity <= 0 {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindInvalid, op, "quantity must be positive")
	}
	if color == "" {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindInvalid, op, "color is required")
	}

	printer, _, err := s.repo.GetPrinter(ctx, printerID)
	if err != nil {
		return ChangeResult{}, err
	}
	if printer.Type != model.KindFilament {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindNotFound, op, "printer is not a filament printer: "+printerID)
	}
	if printer.CurrentMaterialID == "" {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindNotFound, op, "printer has no material loaded: "+printerID)
	}

	current, _, err := s.repo.GetMaterial(ctx, printer.CurrentMaterialID)
	if err != nil {
		return ChangeResult{}, err
	}
	if current.Remaining >= LowStockThreshold && current.Color == color {
		return ChangeResult{
			MaterialID:   current.ID,
			MaterialName: current.Name,
			Remaining:    current.Remaining,
			Changed:      false,
		}, nil
	}

	if printer.FilamentDiameter <= 0 {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindInvalid, op, "printer has no filament diameter configured: "+printerID)
	}

	candidates, err := s.repo.FindMaterials(ctx, func(m model.Material) bool {
		return m.Kind == model.KindFilament &&
			m.Filament != nil &&
			m.Filament.Diameter == printer.FilamentDiameter &&
			m.Color == color
	})
	if err != nil {
		return ChangeResult{}, err
	}
	if len(candidates) == 0 {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindNotFound, op, "no compatible filament for color "+color)
	}

	chosen := ""
	for _, m := range candidates {
		if m.Remaining >= quantity {
			chosen = m.ID
			break
		}
	}
	if chosen == "" {
		return ChangeResult{}, platformerrors.New(
			platformerrors.KindConflict, op, "insufficient stock for color "+color)
	}

	reserved, err := s.reserve(ctx, op, chosen, quantity)
	if err != nil {
		return ChangeResult{}, err
	}

	if err := s.loadMaterial(ctx, printer.ID, reserved.ID); err != nil {
		// The stock decrement is already committed; surface the
		// inconsistency loudly instead of silently retrying forever.
		s.logger.Error("filament reserved on %s but printer %s not updated: %v",
			reserved.ID, printer.ID, err)
		return ChangeResult{}, platformerrors.Wrap(
			platformerrors.KindStorage, op, "stock reserved but printer update failed", err)
	}

	eventbus.Publish(eventbus.EventMaterialReserved, eventbus.ReservationEventData{
		PrinterID:    printer.ID,
		MaterialID:   reserved.ID,
		MaterialName: reserved.Name,
		Quantity:     quantity,
		Remaining:    reserved.Remaining,
	})
	s.logger.Info("printer %s loaded filament %s, %.2f reserved, %.2f remaining",
		printer.ID, reserved.Name, quantity, reserved.Remaining)

	return ChangeResult{
		MaterialID:   reserved.ID,
		MaterialName: reserved.Name,
		Remaining:    reserved.Remaining,
		Changed:      true,
	}, nil
}

// reserve decrements quantity units of stock from a material under
// optimistic concurrency. The remaining quantity is re-checked on
// every attempt so two callers can never overdraw the same spool.
func (s *Service) reserve(ctx context.Context, op, materialID string, quantity float64) (model.Material, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		m, rev, err := s.repo.GetMaterial(ctx, materialID)
		if err != nil {
			return model.Material{}, err
		}
		if m.Remaining < quantity {
			return model.Material{}, platformerrors.New(
				platformerrors.KindConflict, op, "insufficient stock for material "+m.Name)
		}
		m.Remaining -= quantity
		if err := s.repo.ReplaceMaterial(ctx, m, rev); err != nil {
			if platformerrors.IsKind(err, platformerrors.KindConflict) {
				continue
			}
			return model.Material{}, err
		}
		return m, nil
	}
	return model.Material{}, platformerrors.New(
		platformerrors.KindConflict, op, "too much contention on material "+materialID)
}

// loadMaterial points a printer at a material under optimistic concurrency.
func (s *Service) loadMaterial(ctx context.Context, printerID, materialID string) error {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		p, rev, err := s.repo.GetPrinter(ctx, printerID)
		if err != nil {
			return err
		}
		p.CurrentMaterialID = materialID
		if err := s.repo.ReplacePrinter(ctx, p, rev); err != nil {
			if platformerrors.IsKind(err, platformerrors.KindConflict) {
				continue
			}
			return err
		}
		return nil
	}
	return platformerrors.New(
		platformerrors.KindConflict, "inventory.load_material", "too much contention on printer "+printerID)
}

// AssignMaterial loads a material into a printer after checking that
// the material's kind matches the printer's type.
func (s *Service) AssignMaterial(ctx context.Context, printerID, materialID string) (model.Printer, error) {
	const op = "inventory.assign_material"

	printer, _, err := s.repo.GetPrinter(ctx, printerID)
	if err != nil {
		return model.Printer{}, err
	}
	material, _, err := s.repo.GetMaterial(ctx, materialID)
	if err != nil {
		return model.Printer{}, err
	}
	if material.Kind != printer.Type {
		return model.Printer{}, platformerrors.New(
			platformerrors.KindIncompatible, op,
			"material kind "+string(material.Kind)+" does not match printer type "+string(printer.Type))
	}

	if err := s.loadMaterial(ctx, printer.ID, material.ID); err != nil {
		return model.Printer{}, err
	}

	eventbus.Publish(eventbus.EventMaterialAssigned, eventbus.AssignmentEventData{
		PrinterID:  printer.ID,
		MaterialID: material.ID,
	})
	s.logger.Info("printer %s assigned material %s", printer.ID, material.ID)

	printer.CurrentMaterialID = material.ID
	return printer, nil
}
