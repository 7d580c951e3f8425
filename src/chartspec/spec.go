// Package chartspec maps a historical reading sequence into a
// renderer-agnostic chart description. Build is a pure function of its
// input: the spec is recomputed in full on every change and never patched
// incrementally, so renderers can apply it with destructive full-replace
// semantics.
package chartspec

import (
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/types"
)

// CO2DisplayDivisor rescales CO2 ppm values so the series shares a readable
// y-range with the other four.
const CO2DisplayDivisor = 10

// PlaceholderTitle is the centered label of the empty-history spec.
const PlaceholderTitle = "no data"

// Fixed series order; renderers rely on it for color assignment.
const (
	SeriesTemperature = "temperature"
	SeriesHumidity    = "humidity"
	SeriesSoil        = "soil moisture"
	SeriesRain        = "rain level"
	SeriesCO2         = "CO2 (x10 ppm)"
)

// Series is one named line aligned by index to the category axis.
type Series struct {
	Name string
	Data []float64
}

// Spec describes axes, series and legend for one full redraw.
type Spec struct {
	// Placeholder marks the empty-history terminal state: no axes, no
	// series, a centered title. Not an error.
	Placeholder bool
	Title       string
	// AxisLabels are the per-point minute:second category labels.
	AxisLabels []string
	// LabelInterval is the number of category labels skipped between two
	// shown ones (ECharts axisLabel.interval semantics); it thins labels
	// proportionally to point count.
	LabelInterval int
	Series        []Series
}

// Build derives the chart spec from an oldest-first reading sequence.
//
// Missing soil/rain/CO2 values chart as zero; the chart's missing-value
// policy deliberately differs from the text display's N/A sentinel. The CO2
// series charts the actual CO2 readings; the original dashboard reused the
// rain data here, which is treated as a defect and corrected (see DESIGN.md).
func Build(history []types.SensorReading) Spec {
	if len(history) == 0 {
		return Spec{Placeholder: true, Title: PlaceholderTitle, Series: []Series{}}
	}

	n := len(history)
	labels := make([]string, n)
	temperature := make([]float64, n)
	humidity := make([]float64, n)
	soil := make([]float64, n)
	rain := make([]float64, n)
	co2 := make([]float64, n)
	for i, r := range history {
		labels[i] = types.AxisLabel(r.Timestamp)
		temperature[i] = r.Temperature
		humidity[i] = r.Humidity
		soil[i] = chartValue(r.Soil)
		rain[i] = chartValue(r.Rain)
		co2[i] = chartValue(r.CO2) / CO2DisplayDivisor
	}

	return Spec{
		Title:         "recent readings",
		AxisLabels:    labels,
		LabelInterval: LabelInterval(n),
		Series: []Series{
			{Name: SeriesTemperature, Data: temperature},
			{Name: SeriesHumidity, Data: humidity},
			{Name: SeriesSoil, Data: soil},
			{Name: SeriesRain, Data: rain},
			{Name: SeriesCO2, Data: co2},
		},
	}
}

// chartValue coerces an optional field to the charting zero.
func chartValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// LabelInterval returns how many axis labels to skip between shown ones for
// n points: roughly one label per six points, all labels at low counts.
// Cosmetic only; correctness never depends on it.
func LabelInterval(n int) int {
	if n <= 0 {
		return 0
	}
	return n / 6
}
