package eventbus

// Topics published by the domain services.
const (
	// Session authority events
	EventIdentityLogin   = "identity:login"
	EventIdentityRevoked = "identity:revoked"

	// Inventory events
	EventMaterialReserved = "inventory:reserved"
	EventMaterialAssigned = "inventory:assigned"

	// Order events
	EventOrderPriced = "orders:priced"
)

// IdentityEventData describes a session authority event.
type IdentityEventData struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion int64  `json:"token_version"`
}

// ReservationEventData describes a completed material reservation.
type ReservationEventData struct {
	PrinterID    string  `json:"printer_id"`
	MaterialID   string  `json:"material_id"`
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	Remaining    float64 `json:"remaining"`
}

// AssignmentEventData describes a printer material assignment.
type AssignmentEventData struct {
	PrinterID  string `json:"printer_id"`
	MaterialID string `json:"material_id"`
}

// OrderPricedEventData describes a computed order cost.
type OrderPricedEventData struct {
	OrderID   string  `json:"order_id"`
	TotalCost float64 `json:"total_cost"`
}
