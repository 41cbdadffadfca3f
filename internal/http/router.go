package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/clerk/internal/http/catalog"
	"github.com/MrJamesThe3rd/clerk/internal/http/checkout"
	"github.com/MrJamesThe3rd/clerk/internal/http/export"
	"github.com/MrJamesThe3rd/clerk/internal/http/importcsv"
	"github.com/MrJamesThe3rd/clerk/internal/http/inventory"
	"github.com/MrJamesThe3rd/clerk/internal/http/report"
	"github.com/MrJamesThe3rd/clerk/internal/http/transaction"
)

type Handlers struct {
	Catalog      *catalog.Handler
	Import       *importcsv.Handler
	Inventory    *inventory.Handler
	Checkout     *checkout.Handler
	Transactions *transaction.Handler
	Reports      *report.Handler
	Export       *export.Handler
}

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Route("/import", h.Import.Routes)
			h.Catalog.Routes(r)
		})

		r.Route("/inventory", h.Inventory.Routes)

		r.Route("/sessions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Checkout.Routes(r)
		})

		r.Route("/transactions", h.Transactions.Routes)
		r.Route("/reports", h.Reports.Routes)

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
