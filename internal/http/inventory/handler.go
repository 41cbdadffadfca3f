package inventory

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/http/respond"
	"github.com/MrJamesThe3rd/clerk/internal/inventory"
)

type Handler struct {
	checker *inventory.Checker
	log     *zap.Logger
}

func NewHandler(checker *inventory.Checker, log *zap.Logger) *Handler {
	return &Handler{checker: checker, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{sku}", h.check)
}

type availabilityResponse struct {
	SKU       string           `json:"sku"`
	Requested int              `json:"requested"`
	Available bool             `json:"available"`
	InStock   *int             `json:"in_stock,omitempty"`
	Product   *catalog.Product `json:"product"`
}

// check answers whether quantity (default 1) units of sku can be sold. An
// unknown SKU is a 200 with a null product, matching the checker.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	quantity := 1

	if s := r.URL.Query().Get("quantity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respond.BadRequest(w, h.log, "quantity must be an integer")
			return
		}

		quantity = n
	}

	avail, err := h.checker.CheckAvailability(r.Context(), chi.URLParam(r, "sku"), quantity)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := availabilityResponse{
		SKU:       avail.SKU,
		Requested: avail.Requested,
		Available: avail.Available,
		Product:   avail.Product,
	}

	if avail.Product != nil {
		resp.InStock = &avail.Product.StockQuantity
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}
