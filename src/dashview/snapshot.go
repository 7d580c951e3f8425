package dashview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
)

// Snapshot dimensions match the live chart's aspect.
const (
	snapshotWidth  = 900
	snapshotHeight = 420
)

// RenderPNG writes the spec as a static PNG chart. It runs headlessly, with
// no browser or window, for the /chart.png endpoint and the -snapshot mode.
// A placeholder spec (and a single-point history, which has no drawable
// range yet) renders as a labeled blank image rather than an error.
func RenderPNG(spec chartspec.Spec, w io.Writer) error {
	if spec.Placeholder {
		return renderTextPNG(spec.Title, w)
	}
	if len(spec.AxisLabels) < 2 {
		return renderTextPNG("collecting data", w)
	}

	series := make([]chart.Series, 0, len(spec.Series))
	xs := make([]float64, len(spec.AxisLabels))
	for i := range xs {
		xs[i] = float64(i)
	}
	for _, s := range spec.Series {
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Data,
		})
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  snapshotWidth,
		Height: snapshotHeight,
		XAxis: chart.XAxis{
			Ticks: axisTicks(spec.AxisLabels, spec.LabelInterval),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}
	return nil
}

// axisTicks places one labeled tick per shown category label, always
// including the final point so the domain is fully covered.
func axisTicks(labels []string, interval int) []chart.Tick {
	step := interval + 1
	var ticks []chart.Tick
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	if last := len(labels) - 1; len(ticks) == 0 || ticks[len(ticks)-1].Value != float64(last) {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: labels[last]})
	}
	return ticks
}

// renderTextPNG draws a centered label on a blank canvas, used for the
// empty-history placeholder.
func renderTextPNG(label string, w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, snapshotWidth, snapshotHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	textW := font.MeasureString(face, label).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 0x55}),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I((snapshotWidth - textW) / 2),
			Y: fixed.I(snapshotHeight / 2),
		},
	}
	d.DrawString(label)
	return png.Encode(w, img)
}
