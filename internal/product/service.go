package product

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/gofrs/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	PageSize    = 10
	TopProducts = 3
)

type Service interface {
	ListProducts(ctx context.Context, keyword string, pageNumber int) (*Page, error)
	TopProducts(ctx context.Context) ([]Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateSampleProduct(ctx context.Context, ownerID uuid.UUID) (*Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, update Update) (*Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AddReview(ctx context.Context, productID uuid.UUID, review Review) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// PageCount returns how many pages of size PageSize hold total products.
func PageCount(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

func (s *service) ListProducts(ctx context.Context, keyword string, pageNumber int) (*Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}

	offset := math.MaxInt
	if pageNumber-1 <= math.MaxInt/PageSize {
		offset = PageSize * (pageNumber - 1)
	}

	products, total, err := s.repo.List(ctx, keyword, PageSize, offset)
	if err != nil {
		log.Error().Err(err).Str("keyword", keyword).Int("page", pageNumber).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return &Page{
		Products: products,
		Page:     pageNumber,
		Pages:    PageCount(total),
	}, nil
}

func (s *service) TopProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.Top(ctx, TopProducts)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch top products: %w", err)
	}
	return products, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return p, nil
}

// CreateSampleProduct creates a placeholder class owned by ownerID that an
// admin then fills in through UpdateProduct.
func (s *service) CreateSampleProduct(ctx context.Context, ownerID uuid.UUID) (*Product, error) {
	p := &Product{
		UserID:      ownerID,
		Name:        "Sample name",
		Price:       decimal.Zero,
		Image:       "/images/sample.jpg",
		Instructor:  "Sample instructor",
		Category:    "Sample category",
		Description: "Sample description",
	}
	p.Slug = slug.Make(p.Name)

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Stringer("owner_id", ownerID).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Msg("service: sample product created")
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, update Update) (*Product, error) {
	if update.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	if update.SlotsAvailable < 0 {
		return nil, ErrNegativeSlots
	}

	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = update.Name
	p.Slug = slug.Make(update.Name)
	p.Price = update.Price
	p.Image = update.Image
	p.Instructor = update.Instructor
	p.Category = update.Category
	p.Description = update.Description
	p.SlotsAvailable = update.SlotsAvailable

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	log.Info().Stringer("product_id", id).Msg("service: product removed")
	return nil
}

func (s *service) AddReview(ctx context.Context, productID uuid.UUID, review Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}

	review.ProductID = productID
	if err := s.repo.AddReview(ctx, &review); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) || errors.Is(err, ErrNotFound) {
			return err
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to add review")
		return fmt.Errorf("service: failed to add review: %w", err)
	}

	return nil
}
