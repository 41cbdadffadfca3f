package checkout

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/http/respond"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type Handler struct {
	sessions *checkout.Sessions
	store    receipt.Store
	log      *zap.Logger
}

func NewHandler(sessions *checkout.Sessions, store receipt.Store, log *zap.Logger) *Handler {
	return &Handler{sessions: sessions, store: store, log: log}
}

// Routes mounts under /sessions. The session ID is any client-chosen
// terminal name; sessions are created on first use.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/cart", h.getCart)
		r.Delete("/cart", h.clearCart)
		r.Post("/cart/items", h.addItem)
		r.Patch("/cart/items/{sku}", h.updateItem)
		r.Delete("/cart/items/{sku}", h.removeItem)
		r.Post("/checkout", h.checkout)
	})
}

type itemResponse struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

type cartResponse struct {
	Items    []itemResponse  `json:"items"`
	Subtotal int64           `json:"subtotal"`
	Tax      int64           `json:"tax"`
	Total    int64           `json:"total"`
	State    checkout.State  `json:"state"`
	Status   checkout.Status `json:"status"`
}

func toCartResponse(s *checkout.Session) cartResponse {
	items := s.Items()
	totals := s.Totals()

	resp := cartResponse{
		Items:    make([]itemResponse, len(items)),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
		State:    s.State(),
		Status:   s.Status(),
	}

	for i, it := range items {
		resp.Items[i] = itemResponse{
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		}
	}

	return resp
}

func (h *Handler) session(r *http.Request) *checkout.Session {
	return h.sessions.Get(chi.URLParam(r, "id"))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, h.log, http.StatusOK, toCartResponse(h.session(r)))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Clear(); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toCartResponse(s))
}

type addItemRequest struct {
	SKU      string `json:"sku"`
	Quantity *int   `json:"quantity,omitempty"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, err.Error())
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	s := h.session(r)
	if _, err := s.Add(r.Context(), strings.TrimSpace(req.SKU), quantity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toCartResponse(s))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// updateItem sets the quantity of a line. Zero or less removes it.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, err.Error())
		return
	}

	s := h.session(r)
	if err := s.UpdateQuantity(chi.URLParam(r, "sku"), req.Quantity); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toCartResponse(s))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	if err := s.Remove(chi.URLParam(r, "sku")); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toCartResponse(s))
}

type checkoutResponse struct {
	Transaction *transaction.Transaction `json:"transaction"`
	Receipt     string                   `json:"receipt"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	tx, err := h.session(r).CompleteSale(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	h.log.Info("sale completed",
		zap.String("session", chi.URLParam(r, "id")),
		zap.String("transaction_id", tx.ID),
		zap.Int64("total", tx.Total),
	)

	var b strings.Builder
	if err := receipt.Render(&b, tx, h.store); err != nil {
		h.log.Error("failed to render receipt", zap.String("transaction_id", tx.ID), zap.Error(err))
	}

	respond.JSON(w, h.log, http.StatusCreated, checkoutResponse{Transaction: tx, Receipt: b.String()})
}
