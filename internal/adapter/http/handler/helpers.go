package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/microloan/internal/adapter/http/dto"
	"github.com/iho/microloan/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLoanNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLoanAlreadyPaid):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLoanDefaulted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNonPositivePayment):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPaymentAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFuturePaymentDate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPrincipal):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidInterestRate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidLoanTerm):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidClientName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPhone):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPasswordTooWeak):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
