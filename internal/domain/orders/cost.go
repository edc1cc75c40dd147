package orders

import (
	"context"
	"strconv"
	"strings"

	"forge-server-go/internal/domain/eventbus"
	"forge-server-go/internal/domain/inventory"
	"forge-server-go/internal/domain/orders/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

// Pricing policy constants. The reference diameter normalizes filament
// prices against standard 1.75 mm spools; resin prices scale with
// viscosity in thousandths; the geometry surcharge bills the bounding
// volume at a flat rate per cubic unit.
const (
	referenceFilamentDiameter = 1.75
	viscosityDivisor          = 1000.0
	volumeSurchargeRate       = 0.05
)

// casAttempts bounds the optimistic retry loops on order writes.
const casAttempts = 5

// ComputeCost prices an order against the current material catalog and
// persists the result, overwriting any previously stored cost. The
// material is resolved by the order's type and color; orders do not
// pin a specific material record.
func (s *Service) ComputeCost(ctx context.Context, orderID string) (model.Order, error) {
	const op = "orders.compute_cost"

	for attempt := 0; attempt < casAttempts; attempt++ {
		o, rev, err := s.repo.Get(ctx, orderID)
		if err != nil {
			return model.Order{}, err
		}
		if o.WeightGrams <= 0 {
			return model.Order{}, platformerrors.New(
				platformerrors.KindNotFound, op, "order has no usable weight: "+orderID)
		}

		matches, err := s.materials.SearchMaterials(ctx, inventory.MaterialFilter{
			Kind:  string(o.MaterialType),
			Color: o.Color,
		})
		if err != nil {
			return model.Order{}, err
		}
		if len(matches) == 0 {
			return model.Order{}, platformerrors.New(
				platformerrors.KindNotFound, op,
				"no "+string(o.MaterialType)+" material in color "+o.Color)
		}
		material := matches[0]
		if material.UnitPrice <= 0 {
			return model.Order{}, platformerrors.New(
				platformerrors.KindInvalid, op, "material "+material.Name+" has no usable unit price")
		}

		cost := material.UnitPrice * o.WeightGrams
		cost *= variantMultiplier(material)
		cost += volumeProxy(o.Dimensions) * volumeSurchargeRate

		o.TotalCost = cost
		if err := s.repo.Replace(ctx, o, rev); err != nil {
			if platformerrors.IsKind(err, platformerrors.KindConflict) {
				continue
			}
			return model.Order{}, err
		}

		eventbus.Publish(eventbus.EventOrderPriced, eventbus.OrderPricedEventData{
			OrderID:   o.ID,
			TotalCost: o.TotalCost,
		})
		s.logger.Info("order %s priced at %.2f using %s", o.ID, o.TotalCost, material.Name)
		return o, nil
	}
	return model.Order{}, platformerrors.New(
		platformerrors.KindConflict, op, "too much contention on order "+orderID)
}

// variantMultiplier scales the base cost by the material variant's
// physical attributes. Unset attributes leave the cost unchanged.
func variantMultiplier(m inventory.Material) float64 {
	switch {
	case m.Filament != nil && m.Filament.Diameter > 0:
		return m.Filament.Diameter / referenceFilamentDiameter
	case m.Resin != nil && m.Resin.Viscosity > 0:
		return 1 + m.Resin.Viscosity/viscosityDivisor
	default:
		return 1
	}
}

// volumeProxy derives a bounding volume from an "LxWxH" dimension
// string. Tokens that fail to parse count as 1, and a non-positive
// product collapses to 1, so malformed input yields the minimum
// surcharge instead of an error.
func volumeProxy(dimensions string) float64 {
	volume := 1.0
	for _, token := range strings.Split(dimensions, "x") {
		v, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			v = 1
		}
		volume *= v
	}
	if volume <= 0 {
		return 1
	}
	return volume
}
