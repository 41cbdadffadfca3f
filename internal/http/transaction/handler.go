package transaction

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/http/respond"
	"github.com/MrJamesThe3rd/clerk/internal/receipt"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type Handler struct {
	svc   *transaction.Service
	store receipt.Store
	log   *zap.Logger
}

func NewHandler(svc *transaction.Service, store receipt.Store, log *zap.Logger) *Handler {
	if store.Location == nil {
		store.Location = time.UTC
	}

	return &Handler{svc: svc, store: store, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/receipt", h.receipt)
}

// ParseRange turns start_date and end_date (YYYY-MM-DD, both inclusive, in
// loc) into a half-open filter.
func ParseRange(start, end string, loc *time.Location) (transaction.ListFilter, error) {
	var filter transaction.ListFilter

	if start != "" {
		t, err := time.ParseInLocation(time.DateOnly, start, loc)
		if err != nil {
			return filter, err
		}

		filter.Start = &t
	}

	if end != "" {
		t, err := time.ParseInLocation(time.DateOnly, end, loc)
		if err != nil {
			return filter, err
		}

		t = t.AddDate(0, 0, 1)
		filter.End = &t
	}

	return filter, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := ParseRange(q.Get("start_date"), q.Get("end_date"), h.store.Location)
	if err != nil {
		respond.BadRequest(w, h.log, "dates must be YYYY-MM-DD")
		return
	}

	txs, err := h.svc.Search(r.Context(), q.Get("q"), filter)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toResponseList(txs, h.store.Location))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toResponse(tx, h.store.Location))
}

// receipt serves the plain-text receipt; download=true makes it an attachment.
func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(tx)+`"`)
	}

	if err := receipt.Render(w, tx, h.store); err != nil {
		h.log.Error("failed to render receipt", zap.String("transaction_id", tx.ID), zap.Error(err))
	}
}
