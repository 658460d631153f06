package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/class-marketplace/internal/order"
	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

type OrderItemRequest struct {
	Product uuid.UUID `json:"product" validate:"required"`
	Qty     int       `json:"qty" validate:"required,min=1"`
}

// CreateOrderRequest carries what the client chose. Names, images and prices
// are taken from the catalogue, never from the request.
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest    `json:"orderItems" validate:"dive"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod" validate:"required"`
}

// OrderResponse is an order plus what the caller may do with it.
type OrderResponse struct {
	*order.Order
	Actions order.Actions `json:"actions"`
}

func viewerOf(u *user.User) order.Viewer {
	return order.Viewer{UserID: u.ID, IsAdmin: u.IsAdmin}
}

func newOrderResponse(o *order.Order, viewer order.Viewer) OrderResponse {
	return OrderResponse{Order: o, Actions: order.ActionsFor(o, viewer)}
}

func newOrderResponses(orders []order.Order, viewer order.Viewer) []OrderResponse {
	responsePayload := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responsePayload = append(responsePayload, newOrderResponse(&orders[i], viewer))
	}
	return responsePayload
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router, auth *Authenticator) {
	router.Route("/orders", func(r chi.Router) {
		r.Use(auth.Protect)
		r.Post("/", h.handleCreateOrder)
		r.Get("/myorders", h.handleGetMyOrders)
		r.Get("/{id}", h.handleGetOrderByID)
		r.Put("/{id}/pay", h.handlePayOrder)

		r.Group(func(r chi.Router) {
			r.Use(AdminOnly)
			r.Get("/", h.handleListOrders)
			r.Put("/{id}/deliver", h.handleDeliverOrder)
		})
	})
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	var requestPayload CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	items := make([]order.ItemInput, 0, len(requestPayload.OrderItems))
	for _, item := range requestPayload.OrderItems {
		items = append(items, order.ItemInput{ProductID: item.Product, Qty: item.Qty})
	}

	created, err := h.service.CreateOrder(r.Context(), current.ID, order.CreateInput{
		Items:           items,
		ShippingAddress: requestPayload.ShippingAddress,
		PaymentMethod:   requestPayload.PaymentMethod,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, newOrderResponse(created, viewerOf(current)))
}

func (h *OrderHandler) handleGetMyOrders(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	orders, err := h.service.GetOrdersByUserID(r.Context(), current.ID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get orders")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponses(orders, viewerOf(current)))
}

func (h *OrderHandler) handleGetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	current, _ := UserFromContext(r.Context())
	viewer := viewerOf(current)

	found, err := h.service.GetOrderByID(r.Context(), orderID, viewer)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get order by id")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(found, viewer))
}

func (h *OrderHandler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	current, _ := UserFromContext(r.Context())
	viewer := viewerOf(current)

	var requestPayload order.PaymentResult
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	paid, err := h.service.PayOrder(r.Context(), orderID, viewer, requestPayload)
	if err != nil {
		respondWithDomainError(w, err, "Failed to pay order")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(paid, viewer))
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondWithDomainError(w, err, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponses(orders, viewerOf(current)))
}

func (h *OrderHandler) handleDeliverOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	current, _ := UserFromContext(r.Context())

	delivered, err := h.service.DeliverOrder(r.Context(), orderID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to mark order delivered")
		return
	}

	respondWithJSON(w, http.StatusOK, newOrderResponse(delivered, viewerOf(current)))
}
