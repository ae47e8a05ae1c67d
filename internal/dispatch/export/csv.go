package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/khovp/giaokho/internal/dispatch"
	"github.com/khovp/giaokho/internal/shared"
)

// csvHeaders mirrors the column order of the dashboard table.
var csvHeaders = []string{
	"Order KD",
	"Số PO",
	"Order phôi",
	"Order VL",
	"Tên chi tiết",
	"ĐVT",
	"SLL",
	"Ngày gói",
	"Thời hạn",
	"Xác nhận",
	"Ghi chú",
	"Số gói",
	"Lần giao",
	"Ngày xuất",
}

// CSVFilename names the download after the day it was generated.
func CSVFilename(now time.Time) string {
	return fmt.Sprintf("giao-kho-%s.csv", now.Format(shared.ISODateLayout))
}

// WriteRecordsCSV serialises the records to CSV, dates rendered as
// DD/MM/YYYY and blank when absent.
func WriteRecordsCSV(w io.Writer, records []dispatch.DispatchRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.OrderKD,
			rec.PONumber,
			rec.OrderPhoi,
			rec.OrderVL,
			rec.ItemName,
			rec.Unit,
			strconv.Itoa(rec.Quantity),
			shared.FormatDMY(rec.PackDate),
			rec.Status,
			rec.Confirmation,
			rec.Note,
			rec.PackageCount,
			rec.DeliveryRound,
			shared.FormatDMY(rec.ShipDate),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
