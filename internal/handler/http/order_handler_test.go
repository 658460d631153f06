package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/class-marketplace/internal/handler/http"
	"github.com/vasiliy-maslov/class-marketplace/internal/order"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, input order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID, viewer order.Viewer) (*order.Order, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) PayOrder(ctx context.Context, id uuid.UUID, viewer order.Viewer, result order.PaymentResult) (*order.Order, error) {
	args := m.Called(ctx, id, viewer, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) DeliverOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func newOrderEnv() (*testEnv, *MockOrderService) {
	env := newTestEnv()
	mockService := new(MockOrderService)
	h := handler.NewOrderHandler(mockService)
	env.router.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r, env.auth)
	})
	return env, mockService
}

type orderBody struct {
	ID          uuid.UUID     `json:"_id"`
	IsPaid      bool          `json:"isPaid"`
	IsDelivered bool          `json:"isDelivered"`
	Actions     order.Actions `json:"actions"`
}

func TestOrderHandler_handleCreateOrder(t *testing.T) {
	env, mockService := newOrderEnv()
	customer := env.addUser("customer", false)
	productID := uuid.Must(uuid.NewV4())
	address := order.ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}

	created := &order.Order{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: customer.ID,
		Prices: order.Prices{TotalPrice: decimal.RequireFromString("169.00")},
	}
	mockService.On("CreateOrder", mock.Anything, customer.ID, order.CreateInput{
		Items:           []order.ItemInput{{ProductID: productID, Qty: 3}},
		ShippingAddress: address,
		PaymentMethod:   "PayPal",
	}).Return(created, nil).Once()

	rr := env.do(t, http.MethodPost, "/api/orders", handler.CreateOrderRequest{
		OrderItems:      []handler.OrderItemRequest{{Product: productID, Qty: 3}},
		ShippingAddress: address,
		PaymentMethod:   "PayPal",
	}, env.bearer(t, customer))
	requireStatus(t, rr, http.StatusCreated)

	var body orderBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, created.ID, body.ID)
	assert.True(t, body.Actions.CanPay)
	assert.False(t, body.Actions.CanMarkDelivered)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleCreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{name: "no_items", err: order.ErrEmptyOrder, wantStatus: http.StatusBadRequest, wantMessage: "No order items"},
		{name: "class_full", err: order.ErrSlotsExhausted, wantStatus: http.StatusConflict, wantMessage: "Not enough slots available"},
		{name: "unknown_product", err: order.ErrProductNotFound, wantStatus: http.StatusNotFound, wantMessage: "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, mockService := newOrderEnv()
			customer := env.addUser("customer", false)
			mockService.On("CreateOrder", mock.Anything, customer.ID, mock.Anything).Return(nil, tt.err).Once()

			body := `{"orderItems":[],"shippingAddress":{"address":"a","city":"c","postalCode":"p","country":"x"},"paymentMethod":"PayPal"}`
			rr := env.do(t, http.MethodPost, "/api/orders", body, env.bearer(t, customer))

			requireStatus(t, rr, tt.wantStatus)
			assert.Equal(t, tt.wantMessage, decodeMessage(t, rr))
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_handleGetOrderByID_Actions(t *testing.T) {
	env, mockService := newOrderEnv()
	customer := env.addUser("customer", false)
	admin := env.addUser("admin", true)
	paidAt := time.Now().UTC()

	unpaid := &order.Order{ID: uuid.Must(uuid.NewV4()), UserID: customer.ID}
	paid := &order.Order{ID: uuid.Must(uuid.NewV4()), UserID: customer.ID, IsPaid: true, PaidAt: &paidAt}

	tests := []struct {
		name    string
		order   *order.Order
		asAdmin bool
		want    order.Actions
	}{
		{name: "unpaid_seen_by_owner", order: unpaid, asAdmin: false, want: order.Actions{CanPay: true}},
		{name: "unpaid_seen_by_admin", order: unpaid, asAdmin: true, want: order.Actions{CanPay: true}},
		{name: "paid_seen_by_owner", order: paid, asAdmin: false, want: order.Actions{}},
		{name: "paid_seen_by_admin", order: paid, asAdmin: true, want: order.Actions{CanMarkDelivered: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := customer
			if tt.asAdmin {
				caller = admin
			}
			mockService.On("GetOrderByID", mock.Anything, tt.order.ID, order.Viewer{UserID: caller.ID, IsAdmin: caller.IsAdmin}).
				Return(tt.order, nil).
				Once()

			rr := env.do(t, http.MethodGet, "/api/orders/"+tt.order.ID.String(), nil, env.bearer(t, caller))
			requireStatus(t, rr, http.StatusOK)

			var body orderBody
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.want, body.Actions)
		})
	}
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleGetOrderByID_NotOwner(t *testing.T) {
	env, mockService := newOrderEnv()
	stranger := env.addUser("stranger", false)
	id := uuid.Must(uuid.NewV4())

	mockService.On("GetOrderByID", mock.Anything, id, order.Viewer{UserID: stranger.ID}).Return(nil, order.ErrOrderNotFound).Once()

	rr := env.do(t, http.MethodGet, "/api/orders/"+id.String(), nil, env.bearer(t, stranger))

	requireStatus(t, rr, http.StatusNotFound)
	assert.Equal(t, "Order not found", decodeMessage(t, rr))
	mockService.AssertExpectations(t)
}

func TestOrderHandler_handlePayOrder(t *testing.T) {
	env, mockService := newOrderEnv()
	customer := env.addUser("customer", false)
	id := uuid.Must(uuid.NewV4())
	result := order.PaymentResult{ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2025-01-01T10:00:00Z", EmailAddress: "buyer@example.com"}
	paidAt := time.Now().UTC()

	mockService.On("PayOrder", mock.Anything, id, order.Viewer{UserID: customer.ID}, result).
		Return(&order.Order{ID: id, UserID: customer.ID, IsPaid: true, PaidAt: &paidAt, PaymentResult: &result}, nil).
		Once()

	// Providers send more fields than are recorded.
	body := `{"id":"PAY-1","status":"COMPLETED","update_time":"2025-01-01T10:00:00Z","email_address":"buyer@example.com","payer":{"name":"x"}}`
	rr := env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/pay", body, env.bearer(t, customer))
	requireStatus(t, rr, http.StatusOK)

	var paid orderBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&paid))
	assert.True(t, paid.IsPaid)
	assert.False(t, paid.Actions.CanPay)

	mockService.On("PayOrder", mock.Anything, id, order.Viewer{UserID: customer.ID}, mock.Anything).Return(nil, order.ErrAlreadyPaid).Once()
	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/pay", body, env.bearer(t, customer))
	requireStatus(t, rr, http.StatusBadRequest)
	assert.Equal(t, "Order is already paid", decodeMessage(t, rr))

	mockService.AssertExpectations(t)
}

func TestOrderHandler_handleDeliverOrder(t *testing.T) {
	env, mockService := newOrderEnv()
	customer := env.addUser("customer", false)
	admin := env.addUser("admin", true)
	id := uuid.Must(uuid.NewV4())

	rr := env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/deliver", nil, env.bearer(t, customer))
	requireStatus(t, rr, http.StatusUnauthorized)
	assert.Equal(t, "Not authorized as admin", decodeMessage(t, rr))

	mockService.On("DeliverOrder", mock.Anything, id).Return(nil, order.ErrOrderNotPaid).Once()
	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/deliver", nil, env.bearer(t, admin))
	requireStatus(t, rr, http.StatusBadRequest)
	assert.Equal(t, "Order is not paid", decodeMessage(t, rr))

	deliveredAt := time.Now().UTC()
	mockService.On("DeliverOrder", mock.Anything, id).
		Return(&order.Order{ID: id, UserID: customer.ID, IsPaid: true, IsDelivered: true, DeliveredAt: &deliveredAt}, nil).
		Once()
	rr = env.do(t, http.MethodPut, "/api/orders/"+id.String()+"/deliver", nil, env.bearer(t, admin))
	requireStatus(t, rr, http.StatusOK)

	var delivered orderBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&delivered))
	assert.True(t, delivered.IsDelivered)
	assert.Equal(t, order.Actions{}, delivered.Actions)

	mockService.AssertExpectations(t)
}

func TestOrderHandler_ListRoutes(t *testing.T) {
	env, mockService := newOrderEnv()
	customer := env.addUser("customer", false)
	admin := env.addUser("admin", true)

	mockService.On("GetOrdersByUserID", mock.Anything, customer.ID).
		Return([]order.Order{{ID: uuid.Must(uuid.NewV4()), UserID: customer.ID}}, nil).
		Once()
	rr := env.do(t, http.MethodGet, "/api/orders/myorders", nil, env.bearer(t, customer))
	requireStatus(t, rr, http.StatusOK)

	var mine []orderBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&mine))
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Actions.CanPay)

	rr = env.do(t, http.MethodGet, "/api/orders", nil, env.bearer(t, customer))
	requireStatus(t, rr, http.StatusUnauthorized)

	mockService.On("ListOrders", mock.Anything).Return([]order.Order{}, nil).Once()
	rr = env.do(t, http.MethodGet, "/api/orders", nil, env.bearer(t, admin))
	requireStatus(t, rr, http.StatusOK)
	assert.JSONEq(t, "[]", rr.Body.String())

	mockService.AssertExpectations(t)
}
