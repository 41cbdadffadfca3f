package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/clerk/internal/http/respond"
	"github.com/MrJamesThe3rd/clerk/internal/report"
)

type Handler struct {
	svc *report.Service
	now func() time.Time
	log *zap.Logger
}

func NewHandler(svc *report.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, now: time.Now, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/daily", h.daily)
}

// daily summarises ?date=YYYY-MM-DD, defaulting to today in the store's zone.
func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	date := h.now()

	if s := r.URL.Query().Get("date"); s != "" {
		d, err := h.svc.ParseDate(s)
		if err != nil {
			respond.BadRequest(w, h.log, "date must be YYYY-MM-DD")
			return
		}

		date = d
	}

	summary, err := h.svc.DailySummary(r.Context(), date)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, summary)
}
