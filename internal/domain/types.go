package domain

import (
	"strings"
	"time"
)

// CatalogItem describes a purchasable menu item supplied to the store as
// static external input. Prices are in the smallest currency unit (cents).
type CatalogItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        int64    `json:"price"`
	Category     string   `json:"category"`
	Image        string   `json:"image,omitempty"`
	Customizable bool     `json:"customizable,omitempty"`
	Portions     []string `json:"portions,omitempty"`
}

// CartLine is a catalog item selected into the cart. Lines are keyed by
// (item id, selected portion): the same item with a different portion is a
// distinct line.
type CartLine struct {
	CatalogItem
	Quantity        int    `json:"quantity"`
	SelectedPortion string `json:"selectedPortion,omitempty"`
}

// Key returns the merge/lookup identity of the line.
func (l CartLine) Key() CartLineKey {
	return CartLineKey{ItemID: l.ID, Portion: l.SelectedPortion}
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() int64 {
	return l.Price * int64(l.Quantity)
}

// CartLineKey identifies a cart line for merge and lookup purposes.
type CartLineKey struct {
	ItemID  string
	Portion string
}

// CustomerInfo is the contact snapshot captured at checkout.
type CustomerInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// PaymentMethod enumerates the closed set of accepted payment methods.
type PaymentMethod string

const (
	// PaymentCash is settled in cash on collection or delivery.
	PaymentCash PaymentMethod = "cash"
	// PaymentEFT is settled by electronic funds transfer.
	PaymentEFT PaymentMethod = "eft"
	// PaymentMobile is settled through a mobile payment app.
	PaymentMobile PaymentMethod = "mobile"
)

// ParsePaymentMethod validates a caller-supplied payment method string.
func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(value))) {
	case PaymentCash:
		return PaymentCash, true
	case PaymentEFT:
		return PaymentEFT, true
	case PaymentMobile:
		return PaymentMobile, true
	}
	return "", false
}

// FulfillmentType enumerates how an order reaches the customer.
type FulfillmentType string

const (
	// FulfillmentCollection means the customer picks the order up.
	FulfillmentCollection FulfillmentType = "collection"
	// FulfillmentDelivery means the order is delivered; a fixed surcharge
	// applies and a delivery address is required.
	FulfillmentDelivery FulfillmentType = "delivery"
)

// ParseFulfillmentType validates a caller-supplied fulfillment type string.
func ParseFulfillmentType(value string) (FulfillmentType, bool) {
	switch FulfillmentType(strings.ToLower(strings.TrimSpace(value))) {
	case FulfillmentCollection:
		return FulfillmentCollection, true
	case FulfillmentDelivery:
		return FulfillmentDelivery, true
	}
	return "", false
}

// OrderStatus enumerates valid lifecycle states for orders.
type OrderStatus string

const (
	// OrderStatusPending indicates the order was placed and awaits the kitchen.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPreparing indicates the kitchen is working on the order.
	OrderStatusPreparing OrderStatus = "preparing"
	// OrderStatusReady indicates the order awaits collection or dispatch.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusCompleted indicates the order was handed over (terminal).
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled indicates the order was cancelled (terminal).
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates a caller-supplied status string, rejecting
// anything outside the closed set.
func ParseOrderStatus(value string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(value))) {
	case OrderStatusPending:
		return OrderStatusPending, true
	case OrderStatusPreparing:
		return OrderStatusPreparing, true
	case OrderStatusReady:
		return OrderStatusReady, true
	case OrderStatusCompleted:
		return OrderStatusCompleted, true
	case OrderStatusCancelled:
		return OrderStatusCancelled, true
	}
	return "", false
}

// Terminal reports whether no further transitions are allowed from the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

var orderStatusSuccessor = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusCompleted,
}

// CanTransition reports whether target is a valid successor of s. The kitchen
// workflow moves strictly forward one step at a time; cancellation is allowed
// from any non-terminal state.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return !s.Terminal()
	}
	return orderStatusSuccessor[s] == target
}

// Order is an immutable snapshot of the cart at checkout time plus customer
// and fulfillment details. The total is fixed at creation and never
// recomputed from the cart.
type Order struct {
	ID              string          `json:"id"`
	Items           []CartLine      `json:"items"`
	CustomerInfo    CustomerInfo    `json:"customerInfo"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	OrderType       FulfillmentType `json:"orderType"`
	Status          OrderStatus     `json:"status"`
	Total           int64           `json:"total"`
	EstimatedTime   int             `json:"estimatedTime"`
	CreatedAt       time.Time       `json:"createdAt"`
	DeliveryAddress string          `json:"deliveryAddress,omitempty"`
	Phone           string          `json:"phone"`
	Email           string          `json:"email,omitempty"`
}

// Bundle is the single persisted record: the live cart, the session's order
// history, and opaque admin settings.
type Bundle struct {
	Cart          []CartLine     `json:"cart"`
	Orders        []Order        `json:"orders"`
	AdminSettings map[string]any `json:"adminSettings"`
}

// EmptyBundle returns the default bundle used when nothing was stored or the
// stored record could not be parsed.
func EmptyBundle() Bundle {
	return Bundle{
		Cart:          []CartLine{},
		Orders:        []Order{},
		AdminSettings: map[string]any{},
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the owned collections.
func (b Bundle) Clone() Bundle {
	return Bundle{
		Cart:          CloneCartLines(b.Cart),
		Orders:        CloneOrders(b.Orders),
		AdminSettings: cloneAnyMap(b.AdminSettings),
	}
}

// CloneCartLines deep-copies a cart line slice, including portion lists.
func CloneCartLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	for i := range out {
		if len(out[i].Portions) > 0 {
			out[i].Portions = append([]string(nil), out[i].Portions...)
		}
	}
	return out
}

// CloneOrders deep-copies an order slice, including each order's item snapshot.
func CloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	for i := range out {
		out[i].Items = CloneCartLines(out[i].Items)
	}
	return out
}

func cloneAnyMap(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
