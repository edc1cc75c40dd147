package model

import (
	platformerrors "forge-server-go/internal/platform/errors"
)

// Kind discriminates the two print technologies. It doubles as the material
// variant tag and the printer type: an assignment is only legal when the two
// kinds are equal.
type Kind string

const (
	KindResin    Kind = "Resin"
	KindFilament Kind = "Filament"
)

// ParseKind validates a caller-supplied kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindResin:
		return KindResin, nil
	case KindFilament:
		return KindFilament, nil
	default:
		return "", platformerrors.New(
			platformerrors.KindInvalid, "inventory.parse_kind", "invalid kind: "+s)
	}
}

// ResinSpec carries the resin-only attributes.
type ResinSpec struct {
	Viscosity float64 `json:"viscosity"`
}

// FilamentSpec carries the filament-only attributes.
type FilamentSpec struct {
	Grade    string  `json:"grade"`
	Diameter float64 `json:"diameter"`
}

// Material is a feedstock record. Exactly one of Resin/Filament is set,
// matching Kind; Validate enforces the pairing.
type Material struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Color     string        `json:"color"`
	UnitPrice float64       `json:"unit_price"`
	Remaining float64       `json:"remaining_quantity"`
	Kind      Kind          `json:"kind"`
	Resin     *ResinSpec    `json:"resin,omitempty"`
	Filament  *FilamentSpec `json:"filament,omitempty"`
}

// NewResin builds a resin material.
func NewResin(name, color string, unitPrice, remaining, viscosity float64) Material {
	return Material{
		Name:      name,
		Color:     color,
		UnitPrice: unitPrice,
		Remaining: remaining,
		Kind:      KindResin,
		Resin:     &ResinSpec{Viscosity: viscosity},
	}
}

// NewFilament builds a filament material.
func NewFilament(name, color string, unitPrice, remaining float64, grade string, diameter float64) Material {
	return Material{
		Name:      name,
		Color:     color,
		UnitPrice: unitPrice,
		Remaining: remaining,
		Kind:      KindFilament,
		Filament:  &FilamentSpec{Grade: grade, Diameter: diameter},
	}
}

// Validate checks the invariants shared by all materials and the
// variant-specific payload pairing.
func (m Material) Validate() error {
	op := "inventory.material.validate"
	if m.Name == "" {
		return platformerrors.New(platformerrors.KindInvalid, op, "material name is required")
	}
	if m.Remaining < 0 {
		return platformerrors.New(platformerrors.KindInvalid, op, "remaining quantity cannot be negative")
	}
	switch m.Kind {
	case KindResin:
		if m.Resin == nil || m.Filament != nil {
			return platformerrors.New(platformerrors.KindInvalid, op, "resin material requires a resin spec")
		}
	case KindFilament:
		if m.Filament == nil || m.Resin != nil {
			return platformerrors.New(platformerrors.KindInvalid, op, "filament material requires a filament spec")
		}
		if m.Filament.Diameter <= 0 {
			return platformerrors.New(platformerrors.KindInvalid, op, "filament diameter must be positive")
		}
	default:
		return platformerrors.New(platformerrors.KindInvalid, op, "invalid material kind: "+string(m.Kind))
	}
	return nil
}

// PrinterStatus is the closed set of printer availability states.
type PrinterStatus string

const (
	StatusIdle    PrinterStatus = "IDLE"
	StatusBusy    PrinterStatus = "BUSY"
	StatusOffline PrinterStatus = "OFFLINE"
)

// ParsePrinterStatus validates a caller-supplied status string.
func ParsePrinterStatus(s string) (PrinterStatus, error) {
	switch PrinterStatus(s) {
	case StatusIdle, StatusBusy, StatusOffline:
		return PrinterStatus(s), nil
	default:
		return "", platformerrors.New(
			platformerrors.KindInvalid, "inventory.parse_status", "invalid printer status: "+s)
	}
}

// Printer is a machine record. CurrentMaterialID, when set, references a
// material whose kind equals Type; the allocation engine maintains that
// invariant.
type Printer struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Type               Kind          `json:"type"`
	Resolution         string        `json:"resolution,omitempty"`
	MaxDimensions      string        `json:"max_dimensions,omitempty"`
	Price              float64       `json:"price,omitempty"`
	Status             PrinterStatus `json:"status"`
	ResinTankCapacity  float64       `json:"resin_tank_capacity,omitempty"`
	LightSource        string        `json:"light_source,omitempty"`
	FilamentDiameter   float64       `json:"filament_diameter,omitempty"`
	SupportedMaterials []string      `json:"supported_materials,omitempty"`
	CurrentMaterialID  string        `json:"current_material_id,omitempty"`
}

// Validate enforces the per-type required fields.
func (p Printer) Validate() error {
	op := "inventory.printer.validate"
	if p.Name == "" {
		return platformerrors.New(platformerrors.KindInvalid, op, "printer name is required")
	}
	switch p.Type {
	case KindResin:
		if p.ResinTankCapacity <= 0 || p.LightSource == "" {
			return platformerrors.New(platformerrors.KindInvalid, op,
				"resin printers require tank capacity and light source")
		}
	case KindFilament:
		if p.FilamentDiameter <= 0 || len(p.SupportedMaterials) == 0 {
			return platformerrors.New(platformerrors.KindInvalid, op,
				"filament printers require diameter and supported materials")
		}
	default:
		return platformerrors.New(platformerrors.KindInvalid, op, "unsupported printer type: "+string(p.Type))
	}
	if p.Status != "" {
		if _, err := ParsePrinterStatus(string(p.Status)); err != nil {
			return err
		}
	}
	return nil
}
