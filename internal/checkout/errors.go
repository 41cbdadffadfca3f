package checkout

import (
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = inventory.ErrInvalidQuantity
	ErrTimeout         = errors.New("checkout timed out")
	ErrSessionBusy     = errors.New("a sale is being completed on this session")
)

// ProductNotFoundError reports a cart line whose SKU no longer resolves.
// It matches catalog.ErrNotFound.
type ProductNotFoundError struct {
	SKU string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.SKU)
}

func (e *ProductNotFoundError) Unwrap() error {
	return catalog.ErrNotFound
}
