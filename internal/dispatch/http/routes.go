package dispatchhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers dispatch ledger endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/records", h.handleRecords)
	r.Get("/buckets", h.handleBuckets)
	r.Get("/charts/status", h.handleStatusChart)
	r.Get("/charts/exports", h.handleExportChart)
	r.Get("/summary", h.handleSummary)

	r.Post("/confirm", h.handleConfirm)

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/export.csv", h.handleCSV)
		gr.Post("/sheet/preview", h.handleSheetPreview)
		gr.Post("/sheet/print", h.handleSheetPrint)
		gr.Post("/refresh", h.handleRefresh)
	})
}
