// README: CSV loader for seeding the shipment pool from the generated datasets.
package shipment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"cargoshare/internal/types"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
}

// ParseTime accepts the timestamp layouts found in the datasets and API payloads.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", raw)
}

var requiredColumns = []string{
	"shipment_id", "timestamp", "company", "goods_type", "source", "destination",
	"units", "storage_left", "source_lat", "source_lon", "dest_lat", "dest_lon",
	"temp_min", "temp_max",
}

// ReadCSV decodes shipments from a header-led CSV stream. Optional columns
// (truck_type, eta, priority, carbon_footprint_per_km, total_emissions,
// scheduled_delivery_time, truck_capacity) may be absent or empty.
func ReadCSV(r io.Reader) ([]Shipment, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var out []Shipment
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sh, err := decodeRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, sh)
	}
	return out, nil
}

type recordReader struct {
	rec  []string
	cols map[string]int
	err  error
}

func (r *recordReader) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *recordReader) float(col string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", col, err)
	}
	return v
}

func (r *recordReader) whole(col string) int {
	f := r.float(col)
	return int(math.Round(f))
}

func (r *recordReader) optFloat(col string) *float64 {
	if r.err != nil || r.str(col) == "" {
		return nil
	}
	v := r.float(col)
	return &v
}

func (r *recordReader) stamp(col string) time.Time {
	if r.err != nil {
		return time.Time{}
	}
	t, err := ParseTime(r.str(col))
	if err != nil {
		r.err = fmt.Errorf("%s: %w", col, err)
	}
	return t
}

func (r *recordReader) optStamp(col string) *time.Time {
	if r.err != nil || r.str(col) == "" {
		return nil
	}
	t := r.stamp(col)
	return &t
}

func decodeRecord(rec []string, cols map[string]int) (Shipment, error) {
	r := &recordReader{rec: rec, cols: cols}
	sh := Shipment{
		ID:          types.ID(r.str("shipment_id")),
		Timestamp:   r.stamp("timestamp"),
		Company:     r.str("company"),
		GoodsType:   GoodsType(r.str("goods_type")),
		Source:      r.str("source"),
		Destination: r.str("destination"),
		SourcePos:   types.Point{Lat: r.float("source_lat"), Lng: r.float("source_lon")},
		DestPos:     types.Point{Lat: r.float("dest_lat"), Lng: r.float("dest_lon")},
		Units:       r.float("units"),
		TruckType:   r.str("truck_type"),
		StorageLeft: r.float("storage_left"),
		Temp:        TemperatureRange{Min: r.whole("temp_min"), Max: r.whole("temp_max")},
		Priority:    Priority(r.str("priority")),

		ETA:                  r.optStamp("eta"),
		ScheduledDelivery:    r.optStamp("scheduled_delivery_time"),
		CarbonFootprintPerKm: r.optFloat("carbon_footprint_per_km"),
		TotalEmissions:       r.optFloat("total_emissions"),
	}
	if c := r.optFloat("truck_capacity"); c != nil {
		sh.TruckCapacity = *c
	}
	if r.err != nil {
		return Shipment{}, r.err
	}
	return sh, nil
}
