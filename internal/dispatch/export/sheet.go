package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/khovp/giaokho/internal/dispatch"
	"github.com/khovp/giaokho/internal/shared"
	"github.com/khovp/giaokho/web"
)

// sheetMinRows pads the printed check sheet so the grid keeps its layout
// with few selected records.
const sheetMinRows = 20

// SheetRow is one line of the printed check sheet. Blank padding rows keep
// their running index but carry no data.
type SheetRow struct {
	Index        int
	OrderVL      string
	OrderKD      string
	ItemName     string
	Quantity     string
	PackageCount string
	Note         string
}

// SheetPayload feeds the tally sheet template.
type SheetPayload struct {
	Day   string
	Month string
	Year  string
	Rows  []SheetRow
}

// BuildSheetPayload assembles the check sheet for the given records. The
// document date comes from the active bucket when one is selected, today
// otherwise.
func BuildSheetPayload(records []dispatch.DispatchRecord, bucket string, now time.Time) SheetPayload {
	docDate := now
	if bucket != "" && bucket != dispatch.BucketAll {
		if t, err := shared.ParseDMY(bucket); err == nil {
			docDate = t
		}
	}
	day, month, year := shared.SplitDMY(docDate)

	rows := make([]SheetRow, 0, max(len(records), sheetMinRows))
	for i, rec := range records {
		qty := ""
		if rec.Quantity != 0 {
			qty = strconv.Itoa(rec.Quantity)
		}
		rows = append(rows, SheetRow{
			Index:        i + 1,
			OrderVL:      rec.OrderVL,
			OrderKD:      rec.OrderKD,
			ItemName:     rec.ItemName,
			Quantity:     qty,
			PackageCount: rec.PackageCount,
			Note:         rec.Note,
		})
	}
	for i := len(rows); i < sheetMinRows; i++ {
		rows = append(rows, SheetRow{Index: i + 1})
	}

	return SheetPayload{Day: day, Month: month, Year: year, Rows: rows}
}

// SheetRenderer renders the tally sheet HTML from the embedded template.
type SheetRenderer struct {
	tpl *template.Template
}

// NewSheetRenderer parses the embedded tally sheet template.
func NewSheetRenderer() (*SheetRenderer, error) {
	tpl, err := template.ParseFS(web.Templates, "templates/reports/tally_sheet.html")
	if err != nil {
		return nil, fmt.Errorf("parse tally sheet template: %w", err)
	}
	return &SheetRenderer{tpl: tpl}, nil
}

// Render executes the template for one payload.
func (r *SheetRenderer) Render(payload SheetPayload) (string, error) {
	if r == nil || r.tpl == nil {
		return "", fmt.Errorf("sheet renderer not initialised")
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.ExecuteTemplate(buf, "tally_sheet.html", payload); err != nil {
		return "", err
	}
	return buf.String(), nil
}
