// Package respond writes JSON bodies and maps domain errors to HTTP statuses.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type ErrorBody struct {
	Error     string `json:"error"`
	SKU       string `json:"sku,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func JSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

// Status maps err onto the HTTP status a client should see.
func Status(err error) int {
	var stockErr *inventory.InsufficientStockError

	switch {
	case errors.As(err, &stockErr), errors.Is(err, checkout.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrInvalidQuantity), errors.Is(err, inventory.ErrInvalidSKU):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrTimeout), errors.Is(err, inventory.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, catalog.ErrLookupFailed):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// Error writes err as an ErrorBody. Unmapped errors are logged and their
// text is hidden from the client.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := Status(err)
	body := ErrorBody{Error: err.Error()}

	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		body.SKU = stockErr.SKU
		body.Available = &stockErr.Available
	}

	var notFound *checkout.ProductNotFoundError
	if errors.As(err, &notFound) {
		body.SKU = notFound.SKU
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}

	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}

	JSON(w, log, status, body)
}

// BadRequest reports malformed input that never reached the domain.
func BadRequest(w http.ResponseWriter, log *zap.Logger, msg string) {
	JSON(w, log, http.StatusBadRequest, ErrorBody{Error: msg})
}
