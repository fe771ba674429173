package flight

import (
	"fmt"
	"math"
	"time"

	"github.com/flightcast/flightcast/internal/airport"
)

// Column name prefixes for the one-hot airport columns.
const (
	OriginPrefix      = "From__"
	DestinationPrefix = "To__"
)

// baselineOrigins are origin columns that start out true before the actual
// origin is set. The fitted scaler and model were trained against an encoding
// with this quirk, so it stays until the artifacts are refitted.
var baselineOrigins = []string{"BLR", "PAT"}

var (
	columns     = buildColumns()
	columnIndex = func() map[string]int {
		m := make(map[string]int, len(columns))
		for i, c := range columns {
			m[c] = i
		}
		return m
	}()
)

func buildColumns() []string {
	origins := airport.Origins()
	destinations := airport.Destinations()

	cols := make([]string, 0, 3+len(origins)+len(destinations))
	cols = append(cols, "Day", "STD", "STA")
	for _, code := range origins {
		cols = append(cols, OriginPrefix+code)
	}
	for _, code := range destinations {
		cols = append(cols, DestinationPrefix+code)
	}
	return cols
}

// Columns returns the feature column names in model order.
func Columns() []string {
	return append([]string(nil), columns...)
}

// FeatureVector is the single encoded row handed to the numeric pipeline.
type FeatureVector struct {
	// Day is the ISO weekday, Monday=1 through Sunday=7.
	Day int

	// STD and STA are fractional hours rounded to two decimals.
	STD float64
	STA float64

	// From and To are aligned with airport.Origins and airport.Destinations.
	From []bool
	To   []bool
}

// Row returns the numeric values in Columns order, booleans as 0 or 1.
func (v FeatureVector) Row() []float64 {
	row := make([]float64, 0, len(columns))
	row = append(row, float64(v.Day), v.STD, v.STA)
	for _, b := range v.From {
		row = append(row, boolToFloat(b))
	}
	for _, b := range v.To {
		row = append(row, boolToFloat(b))
	}
	return row
}

// Lookup returns the value of a named column.
func (v FeatureVector) Lookup(name string) (float64, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return 0, false
	}
	row := v.Row()
	if i >= len(row) {
		return 0, false
	}
	return row[i], true
}

// Encode maps a validated request onto the fixed feature schema.
func Encode(req Request) (FeatureVector, error) {
	originIdx, ok := airport.OriginIndex(req.Origin)
	if !ok {
		return FeatureVector{}, newError(KindUnknownAirport, "from_city", req.Origin,
			fmt.Sprintf("Invalid city code: %s or %s.", req.Origin, req.Destination))
	}
	destIdx, ok := airport.DestinationIndex(req.Destination)
	if !ok {
		return FeatureVector{}, newError(KindUnknownAirport, "to_city", req.Destination,
			fmt.Sprintf("Invalid city code: %s or %s.", req.Origin, req.Destination))
	}

	from := make([]bool, len(airport.Origins()))
	for _, code := range baselineOrigins {
		if i, ok := airport.OriginIndex(code); ok {
			from[i] = true
		}
	}
	from[originIdx] = true

	to := make([]bool, len(airport.Destinations()))
	to[destIdx] = true

	return FeatureVector{
		Day:  isoWeekday(req.Date),
		STD:  fractionalHour(req.Departure),
		STA:  fractionalHour(req.Arrival),
		From: from,
		To:   to,
	}, nil
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func fractionalHour(t TimeOfDay) float64 {
	h := float64(t.Hour) + float64(t.Minute)/60
	return math.Round(h*100) / 100
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
