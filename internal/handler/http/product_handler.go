package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/class-marketplace/internal/product"
)

// UpdateProductRequest replaces every editable field of a product, so every
// field is required.
type UpdateProductRequest struct {
	Name           string           `json:"name" validate:"required"`
	Price          *decimal.Decimal `json:"price" validate:"required"`
	Image          string           `json:"image" validate:"required"`
	Instructor     string           `json:"instructor" validate:"required"`
	Category       string           `json:"category" validate:"required"`
	Description    string           `json:"description" validate:"required"`
	SlotsAvailable *int             `json:"slotsAvailable" validate:"required,min=0"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router, auth *Authenticator) {
	router.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Get("/top", h.handleTopProducts)
		r.Get("/{id}", h.handleGetProductByID)

		r.Group(func(r chi.Router) {
			r.Use(auth.Protect)
			r.Post("/{id}/reviews", h.handleCreateReview)

			r.Group(func(r chi.Router) {
				r.Use(AdminOnly)
				r.Post("/", h.handleCreateProduct)
				r.Put("/{id}", h.handleUpdateProduct)
				r.Delete("/{id}", h.handleDeleteProduct)
			})
		})
	})
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageNumber, err := strconv.Atoi(query.Get("pageNumber"))
	if err != nil {
		pageNumber = 1
	}

	page, err := h.service.ListProducts(r.Context(), query.Get("keyword"), pageNumber)
	if err != nil {
		respondWithDomainError(w, err, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.TopProducts(r.Context())
	if err != nil {
		respondWithDomainError(w, err, "Failed to get top products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetProductByID(r.Context(), productID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get product by id")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	current, _ := UserFromContext(r.Context())

	p, err := h.service.CreateSampleProduct(r.Context(), current.ID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), productID, product.Update{
		Name:           requestPayload.Name,
		Price:          *requestPayload.Price,
		Image:          requestPayload.Image,
		Instructor:     requestPayload.Instructor,
		Category:       requestPayload.Category,
		Description:    requestPayload.Description,
		SlotsAvailable: *requestPayload.SlotsAvailable,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), productID); err != nil {
		respondWithDomainError(w, err, "Failed to delete product")
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product removed"})
}

func (h *ProductHandler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload CreateReviewRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	current, _ := UserFromContext(r.Context())
	err := h.service.AddReview(r.Context(), productID, product.Review{
		UserID:  current.ID,
		Name:    current.Name,
		Rating:  requestPayload.Rating,
		Comment: requestPayload.Comment,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to add review")
		return
	}

	respondWithJSON(w, http.StatusCreated, MessageResponse{Message: "Review added"})
}
