package handlers

import (
	"context"
	"time"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/state"
)

// stubStore implements state.Store with overridable function fields.
type stubStore struct {
	AddToCartFunc             func(ctx context.Context, item domain.CatalogItem, quantity int, selectedPortion string) ([]domain.CartLine, error)
	UpdateCartLineFunc        func(ctx context.Context, cmd state.UpdateCartLineCommand) ([]domain.CartLine, error)
	RemoveFromCartFunc        func(ctx context.Context, itemID string) ([]domain.CartLine, error)
	ClearCartFunc             func(ctx context.Context)
	CartLinesFunc             func(ctx context.Context) []domain.CartLine
	TotalValueFunc            func(ctx context.Context) int64
	ItemCountFunc             func(ctx context.Context) int
	PlaceOrderFunc            func(ctx context.Context, cmd state.PlaceOrderCommand) (domain.Order, error)
	UpdateOrderStatusFunc     func(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
	CancelOrderFunc           func(ctx context.Context, orderID string) (domain.Order, error)
	OrdersFunc                func(ctx context.Context) []domain.Order
	OrderByIDFunc             func(ctx context.Context, orderID string) (domain.Order, error)
	OrdersByStatusFunc        func(ctx context.Context, status domain.OrderStatus) []domain.Order
	OrdersCreatedOnFunc       func(ctx context.Context, day time.Time) []domain.Order
	RevenueForOrdersFunc      func(orders []domain.Order) int64
	DailyStatsFunc            func(ctx context.Context, day time.Time) state.DailyStats
	AdminSettingsFunc         func(ctx context.Context) map[string]any
	UpdateAdminSettingsFunc   func(ctx context.Context, patch map[string]any) map[string]any
	StorageWarningFunc        func(ctx context.Context) bool
	DismissStorageWarningFunc func(ctx context.Context)
	ResetFunc                 func(ctx context.Context)
}

func (s *stubStore) AddToCart(ctx context.Context, item domain.CatalogItem, quantity int, selectedPortion string) ([]domain.CartLine, error) {
	if s.AddToCartFunc == nil {
		return nil, nil
	}
	return s.AddToCartFunc(ctx, item, quantity, selectedPortion)
}

func (s *stubStore) UpdateCartLine(ctx context.Context, cmd state.UpdateCartLineCommand) ([]domain.CartLine, error) {
	if s.UpdateCartLineFunc == nil {
		return nil, nil
	}
	return s.UpdateCartLineFunc(ctx, cmd)
}

func (s *stubStore) RemoveFromCart(ctx context.Context, itemID string) ([]domain.CartLine, error) {
	if s.RemoveFromCartFunc == nil {
		return nil, nil
	}
	return s.RemoveFromCartFunc(ctx, itemID)
}

func (s *stubStore) ClearCart(ctx context.Context) {
	if s.ClearCartFunc != nil {
		s.ClearCartFunc(ctx)
	}
}

func (s *stubStore) CartLines(ctx context.Context) []domain.CartLine {
	if s.CartLinesFunc == nil {
		return []domain.CartLine{}
	}
	return s.CartLinesFunc(ctx)
}

func (s *stubStore) TotalValue(ctx context.Context) int64 {
	if s.TotalValueFunc == nil {
		return 0
	}
	return s.TotalValueFunc(ctx)
}

func (s *stubStore) ItemCount(ctx context.Context) int {
	if s.ItemCountFunc == nil {
		return 0
	}
	return s.ItemCountFunc(ctx)
}

func (s *stubStore) PlaceOrder(ctx context.Context, cmd state.PlaceOrderCommand) (domain.Order, error) {
	if s.PlaceOrderFunc == nil {
		return domain.Order{}, nil
	}
	return s.PlaceOrderFunc(ctx, cmd)
}

func (s *stubStore) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if s.UpdateOrderStatusFunc == nil {
		return domain.Order{}, nil
	}
	return s.UpdateOrderStatusFunc(ctx, orderID, status)
}

func (s *stubStore) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.CancelOrderFunc == nil {
		return domain.Order{}, nil
	}
	return s.CancelOrderFunc(ctx, orderID)
}

func (s *stubStore) Orders(ctx context.Context) []domain.Order {
	if s.OrdersFunc == nil {
		return []domain.Order{}
	}
	return s.OrdersFunc(ctx)
}

func (s *stubStore) OrderByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.OrderByIDFunc == nil {
		return domain.Order{}, nil
	}
	return s.OrderByIDFunc(ctx, orderID)
}

func (s *stubStore) OrdersByStatus(ctx context.Context, status domain.OrderStatus) []domain.Order {
	if s.OrdersByStatusFunc == nil {
		return []domain.Order{}
	}
	return s.OrdersByStatusFunc(ctx, status)
}

func (s *stubStore) OrdersCreatedOn(ctx context.Context, day time.Time) []domain.Order {
	if s.OrdersCreatedOnFunc == nil {
		return []domain.Order{}
	}
	return s.OrdersCreatedOnFunc(ctx, day)
}

func (s *stubStore) RevenueForOrders(orders []domain.Order) int64 {
	if s.RevenueForOrdersFunc == nil {
		return 0
	}
	return s.RevenueForOrdersFunc(orders)
}

func (s *stubStore) DailyStats(ctx context.Context, day time.Time) state.DailyStats {
	if s.DailyStatsFunc == nil {
		return state.DailyStats{}
	}
	return s.DailyStatsFunc(ctx, day)
}

func (s *stubStore) AdminSettings(ctx context.Context) map[string]any {
	if s.AdminSettingsFunc == nil {
		return map[string]any{}
	}
	return s.AdminSettingsFunc(ctx)
}

func (s *stubStore) UpdateAdminSettings(ctx context.Context, patch map[string]any) map[string]any {
	if s.UpdateAdminSettingsFunc == nil {
		return map[string]any{}
	}
	return s.UpdateAdminSettingsFunc(ctx, patch)
}

func (s *stubStore) StorageWarning(ctx context.Context) bool {
	if s.StorageWarningFunc == nil {
		return false
	}
	return s.StorageWarningFunc(ctx)
}

func (s *stubStore) DismissStorageWarning(ctx context.Context) {
	if s.DismissStorageWarningFunc != nil {
		s.DismissStorageWarningFunc(ctx)
	}
}

func (s *stubStore) Reset(ctx context.Context) {
	if s.ResetFunc != nil {
		s.ResetFunc(ctx)
	}
}
