// Package dispatch implements the warehouse dispatch ledger: the in-memory
// record store and the filtering, sorting, pagination, aggregation and
// document pipeline over it.
package dispatch

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khovp/giaokho/internal/appsheet"
	"github.com/khovp/giaokho/internal/shared"
)

// StatusDispatched is the status value marking a record as shipped. It is
// the only status string with semantic meaning; everything else counts as
// pending.
const StatusDispatched = "Đã xuất"

// LabelPending labels the complement of StatusDispatched on charts.
const LabelPending = "Chưa xuất"

// Wire field names of the giao_kho_vp table.
const (
	FieldOrderKD       = "order_kd"
	FieldPONumber      = "so_dh"
	FieldOrderPhoi     = "order_phoi"
	FieldOrderVL       = "order_vat_lieu"
	FieldItemName      = "ten_chi_tiet"
	FieldUnit          = "dvt"
	FieldQuantity      = "sll"
	FieldPackDate      = "ngay_dong_goi"
	FieldStatus        = "thoi_han"
	FieldConfirmation  = "xac_nhan_tu_rc"
	FieldNote          = "ghi_chu"
	FieldPackageCount  = "so_goi"
	FieldDeliveryRound = "lan_giao"
	FieldShipDate      = "ngay_xuat_hang"
)

// RecordID is the synthetic identity assigned to each record at load time.
// It replaces positional identity so selections survive re-sorting.
type RecordID string

// NewRecordID returns a fresh identifier.
func NewRecordID() RecordID {
	return RecordID(uuid.NewString())
}

// DispatchRecord is one row of the dispatch ledger. String fields use the
// empty string for absence; date fields use nil.
type DispatchRecord struct {
	OrderKD       string     `json:"order_kd"`
	PONumber      string     `json:"so_dh"`
	OrderPhoi     string     `json:"order_phoi"`
	OrderVL       string     `json:"order_vat_lieu"`
	ItemName      string     `json:"ten_chi_tiet"`
	Unit          string     `json:"dvt"`
	Quantity      int        `json:"sll"`
	PackDate      *time.Time `json:"ngay_dong_goi,omitempty"`
	Status        string     `json:"thoi_han"`
	Confirmation  string     `json:"xac_nhan_tu_rc"`
	Note          string     `json:"ghi_chu"`
	PackageCount  string     `json:"so_goi"`
	DeliveryRound string     `json:"lan_giao"`
	ShipDate      *time.Time `json:"ngay_xuat_hang,omitempty"`
}

// IsDispatched reports whether the record carries the dispatched sentinel.
func (r DispatchRecord) IsDispatched() bool {
	return r.Status == StatusDispatched
}

// Entry pairs a record with its store identity for display pipelines.
type Entry struct {
	ID     RecordID       `json:"id"`
	Record DispatchRecord `json:"record"`
}

// RecordFromRow maps one loosely-typed feed row onto a DispatchRecord.
// Quantity tolerates string or numeric cells; invalid values default to 0.
func RecordFromRow(row appsheet.Row) DispatchRecord {
	return DispatchRecord{
		OrderKD:       row.String(FieldOrderKD),
		PONumber:      row.String(FieldPONumber),
		OrderPhoi:     row.String(FieldOrderPhoi),
		OrderVL:       row.String(FieldOrderVL),
		ItemName:      row.String(FieldItemName),
		Unit:          row.String(FieldUnit),
		Quantity:      parseQuantity(row.String(FieldQuantity)),
		PackDate:      shared.ParseWireDate(row.String(FieldPackDate)),
		Status:        row.String(FieldStatus),
		Confirmation:  row.String(FieldConfirmation),
		Note:          row.String(FieldNote),
		PackageCount:  row.String(FieldPackageCount),
		DeliveryRound: row.String(FieldDeliveryRound),
		ShipDate:      shared.ParseWireDate(row.String(FieldShipDate)),
	}
}

func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

// FieldString renders the named field as the string the UI displays, which
// is also the form searched and compared for non-date sorts. Dates render as
// DD/MM/YYYY, quantity as its decimal form.
func (r DispatchRecord) FieldString(field string) string {
	switch field {
	case FieldOrderKD:
		return r.OrderKD
	case FieldPONumber:
		return r.PONumber
	case FieldOrderPhoi:
		return r.OrderPhoi
	case FieldOrderVL:
		return r.OrderVL
	case FieldItemName:
		return r.ItemName
	case FieldUnit:
		return r.Unit
	case FieldQuantity:
		return strconv.Itoa(r.Quantity)
	case FieldPackDate:
		return shared.FormatDMY(r.PackDate)
	case FieldStatus:
		return r.Status
	case FieldConfirmation:
		return r.Confirmation
	case FieldNote:
		return r.Note
	case FieldPackageCount:
		return r.PackageCount
	case FieldDeliveryRound:
		return r.DeliveryRound
	case FieldShipDate:
		return shared.FormatDMY(r.ShipDate)
	default:
		return ""
	}
}

// searchFields lists every field visited by the free-text search.
var searchFields = []string{
	FieldOrderKD, FieldPONumber, FieldOrderPhoi, FieldOrderVL,
	FieldItemName, FieldUnit, FieldQuantity, FieldPackDate,
	FieldStatus, FieldConfirmation, FieldNote, FieldPackageCount,
	FieldDeliveryRound, FieldShipDate,
}
