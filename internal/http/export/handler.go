package export

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/export"
	"github.com/MrJamesThe3rd/clerk/internal/http/respond"
	httptx "github.com/MrJamesThe3rd/clerk/internal/http/transaction"
	"github.com/MrJamesThe3rd/clerk/internal/transaction"
)

type Handler struct {
	svc *export.Service
	loc *time.Location
	log *zap.Logger
}

func NewHandler(svc *export.Service, loc *time.Location, log *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}

	return &Handler{svc: svc, loc: loc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

// exportRequest dates are YYYY-MM-DD and inclusive.
type exportRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type exportedTransaction struct {
	ID        string    `json:"transaction_id"`
	Timestamp time.Time `json:"timestamp"`
	ItemCount int       `json:"item_count"`
	Total     int64     `json:"total"`
	File      string    `json:"file"`
}

type exportMetadataResponse struct {
	Transactions []exportedTransaction `json:"transactions"`
	Summary      string                `json:"summary"`
}

func (h *Handler) decodeFilter(w http.ResponseWriter, r *http.Request) (transaction.ListFilter, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, h.log, err.Error())
		return transaction.ListFilter{}, false
	}

	filter, err := httptx.ParseRange(req.StartDate, req.EndDate, h.loc)
	if err != nil {
		respond.BadRequest(w, h.log, "dates must be YYYY-MM-DD")
		return transaction.ListFilter{}, false
	}

	return filter, true
}

func (h *Handler) exportTo(w http.ResponseWriter, r *http.Request, filter transaction.ListFilter) (string, []export.Item, bool) {
	tmpDir, err := os.MkdirTemp("", "clerk-export-*")
	if err != nil {
		h.log.Error("failed to create export directory", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)

		return "", nil, false
	}

	items, err := h.svc.Export(r.Context(), filter, tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		respond.Error(w, h.log, err)

		return "", nil, false
	}

	return tmpDir, items, true
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	tmpDir, items, ok := h.exportTo(w, r, filter)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	resp := exportMetadataResponse{
		Transactions: make([]exportedTransaction, 0, len(items)),
		Summary:      h.svc.GenerateSummary(items),
	}

	for _, item := range items {
		tx := item.Transaction
		resp.Transactions = append(resp.Transactions, exportedTransaction{
			ID:        tx.ID,
			Timestamp: tx.Timestamp.In(h.loc),
			ItemCount: tx.ItemCount(),
			Total:     tx.Total,
			File:      filepath.Base(item.FilePath),
		})
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.decodeFilter(w, r)
	if !ok {
		return
	}

	tmpDir, items, ok := h.exportTo(w, r, filter)
	if !ok {
		return
	}
	defer os.RemoveAll(tmpDir)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"receipts_%s.zip\"", time.Now().In(h.loc).Format("20060102")))

	if err := h.svc.WriteZip(w, items); err != nil {
		h.log.Error("failed to create zip", zap.Error(err))
	}
}
