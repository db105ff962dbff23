// README: XLSX export of a ranked recommendation list.
package export

import (
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
)

const (
	summarySheet = "Summary"
	resultSheet  = "Recommendations"
)

var resultHeaders = []string{
	"Rank", "Shipment ID", "Company", "Truck Type", "Goods Type", "Route",
	"Storage Left", "Space Usage %", "Score", "Scheduled Delivery",
	"CO2 per km", "CO2 Savings per km", "Note",
}

// Workbook renders the query and its recommendations as an XLSX document.
func Workbook(q shipment.Shipment, results []matching.Result, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	writeSummary(file, q, len(results), generatedAt)

	if _, err := file.NewSheet(resultSheet); err != nil {
		return nil, err
	}
	if err := writeResults(file, results); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(file *excelize.File, q shipment.Shipment, count int, generatedAt time.Time) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	rows := [][2]interface{}{
		{"Generated", generatedAt.UTC().Format(time.RFC3339)},
		{"Query shipment", string(q.ID)},
		{"Company", q.Company},
		{"Goods type", string(q.GoodsType)},
		{"Route", route(q.Source, q.Destination)},
		{"Units", q.Units},
		{"Temperature", fmt.Sprintf("%d to %d °C", q.Temp.Min, q.Temp.Max)},
		{"Recommendations", count},
	}
	for i, r := range rows {
		set(fmt.Sprintf("A%d", i+1), r[0])
		set(fmt.Sprintf("B%d", i+1), r[1])
	}
	_ = file.SetColWidth(summarySheet, "A", "A", 20)
	_ = file.SetColWidth(summarySheet, "B", "B", 40)
}

func writeResults(file *excelize.File, results []matching.Result) error {
	for i, h := range resultHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		_ = file.SetCellValue(resultSheet, cell, h)
	}

	for i, r := range results {
		row := i + 2
		values := []interface{}{
			i + 1,
			string(r.ShipmentID),
			r.Company,
			r.TruckType,
			string(r.GoodsType),
			route(r.Source, r.Destination),
			r.StorageLeft,
			roundTo(r.SpaceUsagePercent, 1),
			roundTo(r.Score, 1),
			formatTime(r.ScheduledDelivery),
			optional(r.CarbonFootprintPerKm),
			optional(r.CarbonSavings),
			note(r),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			_ = file.SetCellValue(resultSheet, cell, v)
		}
	}

	_ = file.SetColWidth(resultSheet, "A", "A", 6)
	_ = file.SetColWidth(resultSheet, "B", "E", 18)
	_ = file.SetColWidth(resultSheet, "F", "F", 32)
	_ = file.SetColWidth(resultSheet, "G", "L", 14)
	_ = file.SetColWidth(resultSheet, "M", "M", 40)
	return nil
}

func note(r matching.Result) string {
	if !r.ExceedsThreshold {
		return ""
	}
	return fmt.Sprintf("Nearest match, destination %.1f km away exceeds threshold", r.Distance)
}

func route(from, to string) string {
	return from + " → " + to
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
