package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// utf8BOM makes spreadsheet tools detect the encoding; product names and masa
// notes carry accented characters.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var exportHeader = []string{
	"order_id", "created_at", "product", "masa", "quantity",
	"unit_price", "line_total", "is_delivery", "delivery_cost", "order_total",
}

// renderCSV writes a day's lines plus a summary footer. Money is always two
// decimals; free-text fields are quoted by the csv writer as needed.
func renderCSV(rows []ExportRow, totals DayTotals) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	var quantity int
	for _, row := range rows {
		masa := ""
		if row.Masa != nil {
			masa = *row.Masa
		}
		record := []string{
			row.OrderID.String(),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
			row.ProductName,
			masa,
			strconv.Itoa(row.Quantity),
			row.UnitPrice.String(),
			row.LineTotal.String(),
			strconv.FormatBool(row.IsDelivery),
			row.DeliveryCost.String(),
			row.OrderTotal.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
		quantity += row.Quantity
	}
	footer := [][]string{
		{},
		{"orders", strconv.Itoa(totals.OrderCount)},
		{"items_sold", strconv.Itoa(quantity)},
		{"delivery_total", totals.DeliveryCost.String()},
		{"total", totals.Total.String()},
	}
	for _, record := range footer {
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
