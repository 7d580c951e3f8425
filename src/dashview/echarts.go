package dashview

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/logging"
)

// loadingOverlay is injected into the rendered page while a history fetch is
// in flight, mirroring the charting library's showLoading veil.
const loadingOverlay = `<div style="position:fixed;inset:0;display:flex;align-items:center;justify-content:center;background:rgba(255,255,255,0.6);font-family:sans-serif;">loading…</div>`

// EChartsRenderer produces the live chart as a self-contained ECharts HTML
// page, served by the web UI in an embedded frame. Each SetOption rebuilds
// the page from scratch, which gives the required destructive full-replace
// semantics for free.
type EChartsRenderer struct {
	mu       sync.Mutex
	bound    bool
	loading  bool
	html     []byte
	revision atomic.Uint64
}

// NewEChartsRenderer returns an unbound renderer.
func NewEChartsRenderer() *EChartsRenderer { return &EChartsRenderer{} }

// Init binds the renderer. The actual browser-side instance is created by
// the generated page itself; Init only marks this side ready.
func (r *EChartsRenderer) Init() error {
	r.mu.Lock()
	r.bound = true
	r.mu.Unlock()
	return nil
}

// SetOption rebuilds the whole page from the spec. replace is accepted for
// contract symmetry; rebuilding is always destructive here.
func (r *EChartsRenderer) SetOption(spec chartspec.Spec, replace bool) {
	_ = replace
	var buf bytes.Buffer
	if err := buildLine(spec).Render(&buf); err != nil {
		logging.Errorf("echarts render: %v", err)
		return
	}
	r.mu.Lock()
	r.html = buf.Bytes()
	r.mu.Unlock()
	r.revision.Add(1)
}

// buildLine maps the renderer-agnostic spec onto an ECharts line chart.
func buildLine(spec chartspec.Spec) *charts.Line {
	line := charts.NewLine()
	if spec.Placeholder {
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px", PageTitle: "flower station"}),
			charts.WithTitleOpts(opts.Title{Title: spec.Title, Left: "center", Top: "middle"}),
		)
		return line
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px", PageTitle: "flower station"}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Interval: strconv.Itoa(spec.LabelInterval)},
		}),
	)
	line.SetXAxis(spec.AxisLabels)
	for _, s := range spec.Series {
		data := make([]opts.LineData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
		Smooth:     opts.Bool(true),
		ShowSymbol: opts.Bool(true),
	}))
	return line
}

// Resize bumps the page revision; the browser-side instance handles its own
// geometry, and the revision lets the embedding page cache-bust a reload.
func (r *EChartsRenderer) Resize() { r.revision.Add(1) }

// Dispose releases the rendered page. Later HTML calls return nothing.
func (r *EChartsRenderer) Dispose() {
	r.mu.Lock()
	r.bound = false
	r.loading = false
	r.html = nil
	r.mu.Unlock()
}

// ShowLoading raises the overlay flag.
func (r *EChartsRenderer) ShowLoading() {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()
}

// HideLoading clears the overlay flag.
func (r *EChartsRenderer) HideLoading() {
	r.mu.Lock()
	r.loading = false
	r.mu.Unlock()
}

// Revision identifies the current page content for cache busting.
func (r *EChartsRenderer) Revision() uint64 { return r.revision.Load() }

// HTML returns the current chart page, with the loading veil injected while
// a history fetch is in flight. Empty until the first SetOption and after
// Dispose.
func (r *EChartsRenderer) HTML() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.bound || r.html == nil {
		return nil
	}
	if r.loading {
		page := string(r.html)
		page = strings.Replace(page, "</body>", loadingOverlay+"</body>", 1)
		return []byte(page)
	}
	out := make([]byte, len(r.html))
	copy(out, r.html)
	return out
}
