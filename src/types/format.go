package types

import (
	"strconv"
	"time"
)

// DisplayTime renders a reading timestamp for the cards and the record list.
func DisplayTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// AxisLabel renders the short minute:second form used as a chart category
// label. Full dates would overlap at chart point density.
func AxisLabel(t time.Time) string {
	return t.Format("04:05")
}

// FormatValue renders a required numeric field for display.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatOptional renders an optional numeric field, substituting the N/A
// sentinel when the station did not report it.
func FormatOptional(v *float64) string {
	if v == nil {
		return ValueNA
	}
	return FormatValue(*v)
}
