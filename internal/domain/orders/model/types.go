// Package model defines the order record.
package model

import (
	inventorymodel "forge-server-go/internal/domain/inventory/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

// Order is a print job request. TotalCost is derived by the cost
// calculator and overwritten on every recomputation; it is never
// taken from the caller.
type Order struct {
	ID           string              `json:"id"`
	ObjectName   string              `json:"object_name"`
	WeightGrams  float64             `json:"weight_grams"`
	Dimensions   string              `json:"dimensions"`
	Color        string              `json:"color"`
	Address      string              `json:"address"`
	MaterialType inventorymodel.Kind `json:"material_type"`
	TotalCost    float64             `json:"total_cost"`
}

// Validate checks the caller-supplied fields of a new order. TotalCost
// is deliberately not validated here since the calculator owns it.
func (o Order) Validate() error {
	op := "orders.validate"
	if o.ObjectName == "" {
		return platformerrors.New(platformerrors.KindInvalid, op, "object name is required")
	}
	if o.WeightGrams <= 0 {
		return platformerrors.New(platformerrors.KindInvalid, op, "weight must be positive")
	}
	if o.Address == "" {
		return platformerrors.New(platformerrors.KindInvalid, op, "shipping address is required")
	}
	if _, err := inventorymodel.ParseKind(string(o.MaterialType)); err != nil {
		return err
	}
	return nil
}
