package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/class-marketplace/internal/product"
)

// Catalog resolves the products an order refers to.
type Catalog interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID, viewer Viewer) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	PayOrder(ctx context.Context, id uuid.UUID, viewer Viewer, result PaymentResult) (*Order, error)
	DeliverOrder(ctx context.Context, id uuid.UUID) (*Order, error)
}

type service struct {
	orderRepo Repository
	catalog   Catalog
	now       func() time.Time
}

func NewService(orderRepo Repository, catalog Catalog) Service {
	return &service{
		orderRepo: orderRepo,
		catalog:   catalog,
		now:       time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateInput) (*Order, error) {
	if len(input.Items) == 0 {
		log.Warn().Stringer("user_id", userID).Msg("service: attempt to create order with no items")
		return nil, ErrEmptyOrder
	}

	items := make([]OrderItem, 0, len(input.Items))
	for _, in := range input.Items {
		if in.Qty <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, in.ProductID)
		}

		p, err := s.catalog.GetProductByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
			}
			return nil, fmt.Errorf("service: failed to load product %s: %w", in.ProductID, err)
		}
		if p.SlotsAvailable < in.Qty {
			return nil, fmt.Errorf("%w: %s", ErrSlotsExhausted, p.Name)
		}

		items = append(items, OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       in.Qty,
			Image:     p.Image,
			Price:     p.Price,
		})
	}

	order := &Order{
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Prices:          CalculatePrices(items),
	}

	if _, err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, ErrSlotsExhausted) || errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", order.ID).Stringer("user_id", userID).Str("total", order.TotalPrice.StringFixed(2)).Msg("service: order created")
	return order, nil
}

// GetOrderByID returns the order when viewer owns it or is an admin. Other
// viewers get ErrOrderNotFound.
func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID, viewer Viewer) (*Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	if !viewer.canSee(order) {
		log.Warn().Stringer("order_id", id).Stringer("viewer_id", viewer.UserID).Msg("service: order requested by a non-owner")
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *service) PayOrder(ctx context.Context, id uuid.UUID, viewer Viewer, result PaymentResult) (*Order, error) {
	order, err := s.GetOrderByID(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	if err := checkTransition(order.Status(), StatusPaid); err != nil {
		log.Warn().Stringer("order_id", id).Stringer("current_status", order.Status()).Msg("service: invalid pay attempt")
		return nil, err
	}

	paidAt := s.now().UTC()
	if err := s.orderRepo.MarkPaid(ctx, id, result, paidAt); err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, ErrAlreadyPaid
		}
		return nil, fmt.Errorf("service: failed to mark order paid: %w", err)
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &result
	order.UpdatedAt = paidAt

	log.Info().Stringer("order_id", id).Str("payment_id", result.ID).Msg("service: order paid")
	return order, nil
}

func (s *service) DeliverOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.GetOrderByID(ctx, id, Viewer{IsAdmin: true})
	if err != nil {
		return nil, err
	}

	if err := checkTransition(order.Status(), StatusDelivered); err != nil {
		log.Warn().Stringer("order_id", id).Stringer("current_status", order.Status()).Msg("service: invalid deliver attempt")
		return nil, err
	}

	deliveredAt := s.now().UTC()
	if err := s.orderRepo.MarkDelivered(ctx, id, deliveredAt); err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, ErrAlreadyDelivered
		}
		return nil, fmt.Errorf("service: failed to mark order delivered: %w", err)
	}

	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	order.UpdatedAt = deliveredAt

	log.Info().Stringer("order_id", id).Msg("service: order delivered")
	return order, nil
}
