package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/class-marketplace/internal/order"
	"github.com/vasiliy-maslov/class-marketplace/internal/product"
	"github.com/vasiliy-maslov/class-marketplace/internal/upload"
	"github.com/vasiliy-maslov/class-marketplace/internal/user"
)

// ErrorResponse is the body of every failed request; clients read Message.
type ErrorResponse struct {
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// MessageResponse acknowledges requests that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Error().Err(err).Msg("Failed to write text response")
	}
}

var domainErrors = []struct {
	err    error
	status int
}{
	{user.ErrNotFound, http.StatusNotFound},
	{user.ErrEmailExists, http.StatusBadRequest},
	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrUserInUse, http.StatusConflict},
	{user.ErrEmptyPassword, http.StatusBadRequest},

	{product.ErrNotFound, http.StatusNotFound},
	{product.ErrAlreadyReviewed, http.StatusBadRequest},
	{product.ErrInvalidRating, http.StatusBadRequest},
	{product.ErrNegativePrice, http.StatusBadRequest},
	{product.ErrNegativeSlots, http.StatusBadRequest},

	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrProductNotFound, http.StatusNotFound},
	{order.ErrEmptyOrder, http.StatusBadRequest},
	{order.ErrInvalidQuantity, http.StatusBadRequest},
	{order.ErrSlotsExhausted, http.StatusConflict},
	{order.ErrOrderNotPaid, http.StatusBadRequest},
	{order.ErrAlreadyPaid, http.StatusBadRequest},
	{order.ErrAlreadyDelivered, http.StatusBadRequest},
	{order.ErrInvalidStatusTransition, http.StatusBadRequest},

	{upload.ErrUnsupportedType, http.StatusBadRequest},
	{upload.ErrTooLarge, http.StatusRequestEntityTooLarge},
}

func mapErrorToStatusCode(err error) int {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return de.status
		}
	}
	return http.StatusInternalServerError
}

// clientMessage returns the capitalized domain error message for known
// errors and fallback for everything else.
func clientMessage(err error, fallback string) string {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			msg := de.err.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return fallback
}

func respondWithDomainError(w http.ResponseWriter, err error, fallback string) {
	statusCode := mapErrorToStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
	} else {
		log.Warn().Err(err).Int("status", statusCode).Msg(fallback)
	}
	respondWithError(w, statusCode, clientMessage(err, fallback))
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "min":
			details[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			details[field] = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			details[field] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
	}
	return details
}

// decodeAndValidate decodes the JSON body into dst and validates it. It
// writes the error response itself and reports whether handling may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	err := validate.Struct(dst)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Message: "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
	} else {
		log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
	}
	return false
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}

// newValidator reports JSON field names in validation details.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}
