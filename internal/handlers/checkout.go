package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mak-braai/pos/internal/domain"
	"github.com/mak-braai/pos/internal/platform/httpx"
	"github.com/mak-braai/pos/internal/state"
)

// CheckoutHandlers turns the current cart into an order.
type CheckoutHandlers struct {
	store state.Store
}

// NewCheckoutHandlers constructs checkout handlers backed by the store.
func NewCheckoutHandlers(store state.Store) *CheckoutHandlers {
	return &CheckoutHandlers{store: store}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
}

type placeOrderRequest struct {
	CustomerInfo struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customerInfo"`
	PaymentMethod   string `json:"paymentMethod"`
	OrderType       string `json:"orderType"`
	DeliveryAddress string `json:"deliveryAddress"`
}

func (h *CheckoutHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req placeOrderRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "paymentMethod must be one of cash, eft, mobile", http.StatusBadRequest))
		return
	}
	orderType, ok := domain.ParseFulfillmentType(req.OrderType)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "orderType must be collection or delivery", http.StatusBadRequest))
		return
	}

	order, err := h.store.PlaceOrder(ctx, state.PlaceOrderCommand{
		Customer: domain.CustomerInfo{
			Name:  strings.TrimSpace(req.CustomerInfo.Name),
			Phone: strings.TrimSpace(req.CustomerInfo.Phone),
			Email: strings.TrimSpace(req.CustomerInfo.Email),
		},
		PaymentMethod:   method,
		OrderType:       orderType,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		writeStoreError(ctx, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{"order": order})
}
