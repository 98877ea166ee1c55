package state

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/storage"
)

const (
	eventCartItemAdded       = "cart.item.added"
	eventCartLineUpdated     = "cart.line.updated"
	eventCartItemRemoved     = "cart.item.removed"
	eventCartCleared         = "cart.cleared"
	eventOrderPlaced         = "order.placed"
	eventOrderStatusChanged  = "order.status.changed"
	eventOrderStatusRejected = "order.status.rejected"
	eventSettingsUpdated     = "admin.settings.updated"
	eventStoreReset          = "store.reset"

	orderIDPrefix = "ord_"
)

var (
	// ErrInvalidInput signals the caller provided invalid data.
	ErrInvalidInput = errors.New("state: invalid input")
	// ErrEmptyCart indicates checkout was attempted with nothing in the cart.
	ErrEmptyCart = errors.New("state: cart is empty")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("state: order not found")
)

// Backend is the persistence collaborator the store saves through. All
// operations are total; persistence failures degrade, they never error.
type Backend interface {
	Load(ctx context.Context) domain.Bundle
	Save(ctx context.Context, partial storage.Partial)
	Degraded() bool
}

// UpdateCartLineCommand patches the first cart line matching ItemID. Nil
// fields keep their current values.
type UpdateCartLineCommand struct {
	ItemID          string
	Quantity        *int
	SelectedPortion *string
}

// PlaceOrderCommand carries everything checkout needs to turn the cart into
// an order.
type PlaceOrderCommand struct {
	Customer        domain.CustomerInfo
	PaymentMethod   domain.PaymentMethod
	OrderType       domain.FulfillmentType
	DeliveryAddress string
}

// DailyStats summarises the orders created on a single calendar day.
type DailyStats struct {
	Date              string `json:"date"`
	OrderCount        int    `json:"orderCount"`
	Revenue           int64  `json:"revenue"`
	AverageOrderValue int64  `json:"averageOrderValue"`
	CompletedCount    int    `json:"completedCount"`
}

// Store owns the live cart and the order history. Commands mutate under one
// lock and persist through the backend; queries return snapshots.
type Store interface {
	AddToCart(ctx context.Context, item domain.CatalogItem, quantity int, selectedPortion string) ([]domain.CartLine, error)
	UpdateCartLine(ctx context.Context, cmd UpdateCartLineCommand) ([]domain.CartLine, error)
	RemoveFromCart(ctx context.Context, itemID string) ([]domain.CartLine, error)
	ClearCart(ctx context.Context)
	CartLines(ctx context.Context) []domain.CartLine
	TotalValue(ctx context.Context) int64
	ItemCount(ctx context.Context) int

	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) (domain.Order, error)
	Orders(ctx context.Context) []domain.Order
	OrderByID(ctx context.Context, orderID string) (domain.Order, error)
	OrdersByStatus(ctx context.Context, status domain.OrderStatus) []domain.Order
	OrdersCreatedOn(ctx context.Context, day time.Time) []domain.Order
	RevenueForOrders(orders []domain.Order) int64
	DailyStats(ctx context.Context, day time.Time) DailyStats

	AdminSettings(ctx context.Context) map[string]any
	UpdateAdminSettings(ctx context.Context, patch map[string]any) map[string]any

	StorageWarning(ctx context.Context) bool
	DismissStorageWarning(ctx context.Context)

	Reset(ctx context.Context)
}

// Deps bundles collaborators required to construct the store.
type Deps struct {
	Backend     Backend
	Clock       func() time.Time
	IDGenerator func() string
	// Rand returns a uniform value in [0, n). Injected so tests can pin
	// the preparation estimate.
	Rand   func(n int) int
	Logger func(ctx context.Context, event string, fields map[string]any)

	DeliverySurcharge int64
	PrepTimeMin       int
	PrepTimeMax       int
	PaymentDelay      time.Duration

	// Sleep suspends for the payment delay; defaults to a context-aware
	// timer. Injected so tests run without waiting.
	Sleep func(ctx context.Context, d time.Duration) error
}

type store struct {
	backend Backend
	clock   func() time.Time
	newID   func() string
	randN   func(n int) int
	logger  func(context.Context, string, map[string]any)
	sleep   func(ctx context.Context, d time.Duration) error

	deliverySurcharge int64
	prepTimeMin       int
	prepTimeSpread    int
	paymentDelay      time.Duration

	mu               sync.Mutex
	cart             []domain.CartLine
	orders           []domain.Order
	adminSettings    map[string]any
	warningDismissed bool
}

// New loads the persisted bundle and wires dependencies into a Store.
func New(ctx context.Context, deps Deps) (Store, error) {
	if deps.Backend == nil {
		return nil, errors.New("state: backend is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	randN := deps.Rand
	if randN == nil {
		randN = rand.Intn
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	sleep := deps.Sleep
	if sleep == nil {
		sleep = waitFor
	}

	surcharge := deps.DeliverySurcharge
	if surcharge < 0 {
		return nil, errors.New("state: delivery surcharge must not be negative")
	}

	prepMin := deps.PrepTimeMin
	prepMax := deps.PrepTimeMax
	if prepMin == 0 && prepMax == 0 {
		prepMin, prepMax = 25, 40
	}
	if prepMin <= 0 || prepMax <= prepMin {
		return nil, errors.New("state: prep time bounds must satisfy 0 < min < max")
	}

	bundle := deps.Backend.Load(ctx)

	return &store{
		backend:           deps.Backend,
		clock:             clock,
		newID:             idGen,
		randN:             randN,
		logger:            logger,
		sleep:             sleep,
		deliverySurcharge: surcharge,
		prepTimeMin:       prepMin,
		prepTimeSpread:    prepMax - prepMin,
		paymentDelay:      deps.PaymentDelay,
		cart:              bundle.Cart,
		orders:            bundle.Orders,
		adminSettings:     bundle.AdminSettings,
	}, nil
}

func (s *store) AddToCart(ctx context.Context, item domain.CatalogItem, quantity int, selectedPortion string) ([]domain.CartLine, error) {
	if strings.TrimSpace(item.ID) == "" {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.CartLineKey{ItemID: item.ID, Portion: selectedPortion}
	merged := false
	for i := range s.cart {
		if s.cart[i].Key() == key {
			s.cart[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.cart = append(s.cart, domain.CartLine{
			CatalogItem:     item,
			Quantity:        quantity,
			SelectedPortion: selectedPortion,
		})
	}

	s.persistCartLocked(ctx)
	s.logger(ctx, eventCartItemAdded, map[string]any{
		"item_id":  item.ID,
		"portion":  selectedPortion,
		"quantity": quantity,
		"merged":   merged,
	})
	return domain.CloneCartLines(s.cart), nil
}

func (s *store) UpdateCartLine(ctx context.Context, cmd UpdateCartLineCommand) ([]domain.CartLine, error) {
	if strings.TrimSpace(cmd.ItemID) == "" {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}
	if cmd.Quantity != nil && *cmd.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Patches the first line matching the item id, regardless of portion.
	for i := range s.cart {
		if s.cart[i].ID != cmd.ItemID {
			continue
		}
		if cmd.Quantity != nil {
			s.cart[i].Quantity = *cmd.Quantity
		}
		if cmd.SelectedPortion != nil {
			s.cart[i].SelectedPortion = *cmd.SelectedPortion
			s.mergeCollidingLineLocked(i)
		}
		s.persistCartLocked(ctx)
		s.logger(ctx, eventCartLineUpdated, map[string]any{"item_id": cmd.ItemID})
		return domain.CloneCartLines(s.cart), nil
	}

	return nil, fmt.Errorf("%w: no cart line with item id %q", ErrInvalidInput, cmd.ItemID)
}

// RemoveFromCart drops every portion variant of the item.
func (s *store) RemoveFromCart(ctx context.Context, itemID string) ([]domain.CartLine, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cart[:0]
	removed := 0
	for _, line := range s.cart {
		if line.ID == itemID {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	s.cart = kept

	if removed > 0 {
		s.persistCartLocked(ctx)
		s.logger(ctx, eventCartItemRemoved, map[string]any{
			"item_id": itemID,
			"lines":   removed,
		})
	}
	return domain.CloneCartLines(s.cart), nil
}

func (s *store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return
	}
	s.cart = []domain.CartLine{}
	s.persistCartLocked(ctx)
	s.logger(ctx, eventCartCleared, nil)
}

func (s *store) CartLines(context.Context) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneCartLines(s.cart)
}

func (s *store) TotalValue(context.Context) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotalLocked(s.cart)
}

func (s *store) ItemCount(context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, line := range s.cart {
		count += line.Quantity
	}
	return count
}

func (s *store) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	if strings.TrimSpace(cmd.Customer.Name) == "" {
		return domain.Order{}, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(cmd.Customer.Phone) == "" {
		return domain.Order{}, fmt.Errorf("%w: customer phone is required", ErrInvalidInput)
	}
	if _, ok := domain.ParsePaymentMethod(string(cmd.PaymentMethod)); !ok {
		return domain.Order{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, cmd.PaymentMethod)
	}
	if _, ok := domain.ParseFulfillmentType(string(cmd.OrderType)); !ok {
		return domain.Order{}, fmt.Errorf("%w: unknown order type %q", ErrInvalidInput, cmd.OrderType)
	}
	if cmd.OrderType == domain.FulfillmentDelivery && strings.TrimSpace(cmd.DeliveryAddress) == "" {
		return domain.Order{}, fmt.Errorf("%w: delivery orders require an address", ErrInvalidInput)
	}

	s.mu.Lock()
	empty := len(s.cart) == 0
	s.mu.Unlock()
	if empty {
		return domain.Order{}, ErrEmptyCart
	}

	// Simulated payment processing. The order must not be observable
	// until this returns, so nothing is mutated yet.
	if err := s.sleep(ctx, s.paymentDelay); err != nil {
		return domain.Order{}, fmt.Errorf("state: payment processing interrupted: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	total := cartTotalLocked(s.cart)
	if cmd.OrderType == domain.FulfillmentDelivery {
		total += s.deliverySurcharge
	}

	order := domain.Order{
		ID:            orderIDPrefix + s.newID(),
		Items:         domain.CloneCartLines(s.cart),
		CustomerInfo:  cmd.Customer,
		PaymentMethod: cmd.PaymentMethod,
		OrderType:     cmd.OrderType,
		Status:        domain.OrderStatusPending,
		Total:         total,
		EstimatedTime: s.prepTimeMin + s.randN(s.prepTimeSpread),
		CreatedAt:     s.clock().UTC(),
		Phone:         cmd.Customer.Phone,
		Email:         cmd.Customer.Email,
	}
	if cmd.OrderType == domain.FulfillmentDelivery {
		order.DeliveryAddress = strings.TrimSpace(cmd.DeliveryAddress)
	}

	// Append and clear as one transition, persisted in one save.
	s.orders = append(s.orders, order)
	s.cart = []domain.CartLine{}

	cart := domain.CloneCartLines(s.cart)
	orders := domain.CloneOrders(s.orders)
	s.backend.Save(ctx, storage.Partial{Cart: &cart, Orders: &orders})

	s.logger(ctx, eventOrderPlaced, map[string]any{
		"order_id":   order.ID,
		"order_type": string(order.OrderType),
		"total":      order.Total,
		"items":      len(order.Items),
	})
	return cloneOrder(order), nil
}

func (s *store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if _, ok := domain.ParseOrderStatus(string(status)); !ok {
		return domain.Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != orderID {
			continue
		}

		current := s.orders[i].Status
		if current == status {
			return cloneOrder(s.orders[i]), nil
		}
		if !current.CanTransition(status) {
			// Invalid transitions are rejected silently; the order
			// keeps its current status.
			s.logger(ctx, eventOrderStatusRejected, map[string]any{
				"order_id": orderID,
				"from":     string(current),
				"to":       string(status),
			})
			return cloneOrder(s.orders[i]), nil
		}

		s.orders[i].Status = status
		s.persistOrdersLocked(ctx)
		s.logger(ctx, eventOrderStatusChanged, map[string]any{
			"order_id": orderID,
			"from":     string(current),
			"to":       string(status),
		})
		return cloneOrder(s.orders[i]), nil
	}

	return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}

func (s *store) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.UpdateOrderStatus(ctx, orderID, domain.OrderStatusCancelled)
}

func (s *store) Orders(context.Context) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneOrders(s.orders)
}

func (s *store) OrderByID(_ context.Context, orderID string) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return cloneOrder(s.orders[i]), nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}

func (s *store) OrdersByStatus(_ context.Context, status domain.OrderStatus) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Order{}
	for i := range s.orders {
		if s.orders[i].Status == status {
			out = append(out, cloneOrder(s.orders[i]))
		}
	}
	return out
}

func (s *store) OrdersCreatedOn(_ context.Context, day time.Time) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	y, m, d := day.Date()
	out := []domain.Order{}
	for i := range s.orders {
		oy, om, od := s.orders[i].CreatedAt.In(day.Location()).Date()
		if oy == y && om == m && od == d {
			out = append(out, cloneOrder(s.orders[i]))
		}
	}
	return out
}

// RevenueForOrders sums the fixed totals of the given orders. Callers that
// want to exclude a status filter the list first.
func (s *store) RevenueForOrders(orders []domain.Order) int64 {
	var revenue int64
	for i := range orders {
		revenue += orders[i].Total
	}
	return revenue
}

func (s *store) DailyStats(ctx context.Context, day time.Time) DailyStats {
	orders := s.OrdersCreatedOn(ctx, day)

	stats := DailyStats{
		Date:       day.Format("2006-01-02"),
		OrderCount: len(orders),
		Revenue:    s.RevenueForOrders(orders),
	}
	for i := range orders {
		if orders[i].Status == domain.OrderStatusCompleted {
			stats.CompletedCount++
		}
	}
	if stats.OrderCount > 0 {
		stats.AverageOrderValue = stats.Revenue / int64(stats.OrderCount)
	}
	return stats
}

func (s *store) AdminSettings(context.Context) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]any, len(s.adminSettings))
	for k, v := range s.adminSettings {
		out[k] = v
	}
	return out
}

func (s *store) UpdateAdminSettings(ctx context.Context, patch map[string]any) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adminSettings == nil {
		s.adminSettings = map[string]any{}
	}
	for k, v := range patch {
		s.adminSettings[k] = v
	}

	settings := make(map[string]any, len(s.adminSettings))
	for k, v := range s.adminSettings {
		settings[k] = v
	}
	s.backend.Save(ctx, storage.Partial{AdminSettings: &settings})
	s.logger(ctx, eventSettingsUpdated, map[string]any{"keys": len(patch)})

	out := make(map[string]any, len(s.adminSettings))
	for k, v := range s.adminSettings {
		out[k] = v
	}
	return out
}

func (s *store) StorageWarning(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Degraded() && !s.warningDismissed
}

func (s *store) DismissStorageWarning(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warningDismissed = true
}

func (s *store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = []domain.CartLine{}
	s.orders = []domain.Order{}
	s.adminSettings = map[string]any{}

	cart := []domain.CartLine{}
	orders := []domain.Order{}
	settings := map[string]any{}
	s.backend.Save(ctx, storage.Partial{Cart: &cart, Orders: &orders, AdminSettings: &settings})
	s.logger(ctx, eventStoreReset, nil)
}

// mergeCollidingLineLocked restores the one-line-per-(item, portion)
// invariant after a portion patch moved line i onto an existing line's key.
func (s *store) mergeCollidingLineLocked(i int) {
	key := s.cart[i].Key()
	for j := range s.cart {
		if j == i || s.cart[j].Key() != key {
			continue
		}
		keep, drop := i, j
		if j < i {
			keep, drop = j, i
		}
		s.cart[keep].Quantity = s.cart[i].Quantity + s.cart[j].Quantity
		s.cart = append(s.cart[:drop], s.cart[drop+1:]...)
		return
	}
}

func (s *store) persistCartLocked(ctx context.Context) {
	cart := domain.CloneCartLines(s.cart)
	s.backend.Save(ctx, storage.Partial{Cart: &cart})
}

func (s *store) persistOrdersLocked(ctx context.Context) {
	orders := domain.CloneOrders(s.orders)
	s.backend.Save(ctx, storage.Partial{Orders: &orders})
}

func cartTotalLocked(cart []domain.CartLine) int64 {
	var total int64
	for i := range cart {
		total += cart[i].LineTotal()
	}
	return total
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = domain.CloneCartLines(order.Items)
	return order
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
