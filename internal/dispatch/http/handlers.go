// Package dispatchhttp exposes the dispatch ledger over HTTP.
package dispatchhttp

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/khovp/giaokho/internal/dispatch"
	"github.com/khovp/giaokho/internal/dispatch/export"
	"github.com/khovp/giaokho/internal/platform/httpx"
	"github.com/khovp/giaokho/internal/shared"
	"github.com/khovp/giaokho/report"
)

// Handler coordinates HTTP requests for the dispatch ledger.
type Handler struct {
	logger   *slog.Logger
	service  *dispatch.Service
	renderer *export.SheetRenderer
	pdf      *report.Client
	validate *validator.Validate
	csvPool  sync.Pool
	now      func() time.Time
}

// NewHandler constructs the dispatch HTTP handler. pdf may be nil; the
// print endpoint then responds 503.
func NewHandler(logger *slog.Logger, service *dispatch.Service, renderer *export.SheetRenderer, pdf *report.Client) *Handler {
	h := &Handler{
		logger:   logger,
		service:  service,
		renderer: renderer,
		pdf:      pdf,
		validate: validator.New(),
		now:      time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	state, err := h.parseViewState(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	page := h.service.ListPage(state)
	if state.Window.Page > page.Pagination.TotalPages {
		state = state.WithPage(page.Pagination.TotalPages)
		page = h.service.ListPage(state)
	}

	httpx.JSON(w, http.StatusOK, recordsResponse{
		Items:      page.Items,
		Pagination: page.Pagination,
		Loading:    h.service.Loading(),
	})
}

type recordsResponse struct {
	Items      []dispatch.Entry  `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
	Loading    bool              `json:"loading"`
}

func (h *Handler) handleBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.service.Buckets(r.Context())
	if err != nil {
		h.logError("load buckets", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}

func (h *Handler) handleStatusChart(w http.ResponseWriter, r *http.Request) {
	tally, err := h.service.StatusSummary(r.Context())
	if err != nil {
		h.logError("load status tally", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tally)
}

func (h *Handler) handleExportChart(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.Exports(r.Context())
	if err != nil {
		h.logError("load export series", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, points)
}

type summaryResponse struct {
	Total   int                    `json:"total"`
	Buckets []dispatch.DayBucket   `json:"buckets"`
	Status  dispatch.StatusTally   `json:"status"`
	Exports []dispatch.ExportPoint `json:"exports"`
	Loading bool                   `json:"loading"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	var resp summaryResponse
	resp.Total = h.service.Len()
	resp.Loading = h.service.Loading()

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		buckets, err := h.service.Buckets(ctx)
		if err != nil {
			return err
		}
		resp.Buckets = buckets
		return nil
	})
	g.Go(func() error {
		tally, err := h.service.StatusSummary(ctx)
		if err != nil {
			return err
		}
		resp.Status = tally
		return nil
	})
	g.Go(func() error {
		points, err := h.service.Exports(ctx)
		if err != nil {
			return err
		}
		resp.Exports = points
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logError("load summary", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	state, err := h.parseViewState(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	records := h.service.FilteredRecords(state.Filter)

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteRecordsCSV(buf, records); err != nil {
		h.logError("write csv", err)
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename(h.now())))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

type sheetRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Bucket string   `json:"bucket"`
}

func (h *Handler) handleSheetPreview(w http.ResponseWriter, r *http.Request) {
	html, err := h.renderSheet(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (h *Handler) handleSheetPrint(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "pdf renderer not configured")
		return
	}
	html, err := h.renderSheet(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdfBytes, err := h.pdf.RenderHTML(r.Context(), html)
	if err != nil {
		h.logError("render pdf", err)
		httpx.Problem(w, http.StatusBadGateway, "PDF Render Failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="bien-ban-check-giao-kho.pdf"`)
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) renderSheet(r *http.Request) (string, error) {
	var req sheetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return "", fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed JSON body")
	}
	if err := h.validate.Struct(req); err != nil {
		return "", fmt.Errorf("%w: ids required", httpx.ErrValidation)
	}

	records := make([]dispatch.DispatchRecord, 0, len(req.IDs))
	for _, raw := range req.IDs {
		rec, err := h.service.Record(dispatch.RecordID(raw))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return "", shared.ErrEmptySelection
	}

	payload := export.BuildSheetPayload(records, req.Bucket, h.now())
	return h.renderer.Render(payload)
}

type confirmRequest struct {
	IDs   []string `json:"ids" validate:"required,min=1,dive,required"`
	Actor string   `json:"actor"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrEmptySelection)
		return
	}

	actor := strings.TrimSpace(req.Actor)
	if actor == "" {
		actor = "dashboard"
	}
	ids := make([]dispatch.RecordID, len(req.IDs))
	for i, raw := range req.IDs {
		ids[i] = dispatch.RecordID(raw)
	}

	updated, err := h.service.ConfirmDispatch(r.Context(), ids, actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"updated": updated})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"records": h.service.Len()})
}

// parseViewState reads the listing query parameters. Unknown values fall
// back to the defaults rather than erroring, matching how the dashboard
// driving this API behaves on stale links.
func (h *Handler) parseViewState(r *http.Request) (dispatch.ViewState, error) {
	state := dispatch.DefaultViewState()
	q := r.URL.Query()

	f := state.Filter
	f.Search = strings.TrimSpace(q.Get("q"))
	if bucket := strings.TrimSpace(q.Get("bucket")); bucket != "" {
		f.Bucket = bucket
	}
	f.OrderKD = strings.TrimSpace(q.Get("order_kd"))
	f.OrderVL = strings.TrimSpace(q.Get("order_vl"))
	switch dispatch.StatusMode(q.Get("status")) {
	case dispatch.StatusModeExported:
		f.StatusMode = dispatch.StatusModeExported
	case dispatch.StatusModePending:
		f.StatusMode = dispatch.StatusModePending
	}

	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		t, err := time.Parse(shared.ISODateLayout, raw)
		if err != nil {
			return state, fmt.Errorf("%w: from must be YYYY-MM-DD", httpx.ErrValidation)
		}
		f.DateFrom = &t
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		t, err := time.Parse(shared.ISODateLayout, raw)
		if err != nil {
			return state, fmt.Errorf("%w: to must be YYYY-MM-DD", httpx.ErrValidation)
		}
		f.DateTo = &t
	}
	state = state.WithFilter(f)

	if key := strings.TrimSpace(q.Get("sort")); key != "" {
		if !dispatch.ValidSortKey(key) {
			return state, fmt.Errorf("%w: unknown sort key %q", httpx.ErrValidation, key)
		}
		state.Sort = dispatch.SortState{Key: key, Descending: q.Get("desc") == "true"}
	}

	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			state = state.WithPage(page)
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		if perPage, err := strconv.Atoi(raw); err == nil && perPage > 0 && perPage <= 100 {
			page := state.Window.Page
			state = state.WithPerPage(perPage).WithPage(page)
		}
	}

	return state, nil
}

func (h *Handler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
}
