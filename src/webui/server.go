// Package webui serves the dashboard over HTTP: the card/list page, the
// embedded live chart, a PNG snapshot of the same chart, health and metrics.
package webui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/dashview"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/logging"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/telemetry"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/types"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/viewstate"
)

// Server renders the dashboard from view-state snapshots. It never talks to
// the sensor endpoint itself; the poll loop keeps the store current.
type Server struct {
	store    *viewstate.Store
	renderer *dashview.EChartsRenderer
	metrics  *telemetry.Metrics
	router   *mux.Router
	started  time.Time
}

// NewServer wires the routes. metrics may be nil, which disables /metrics.
func NewServer(store *viewstate.Store, renderer *dashview.EChartsRenderer, metrics *telemetry.Metrics) *Server {
	s := &Server{
		store:    store,
		renderer: renderer,
		metrics:  metrics,
		router:   mux.NewRouter(),
		started:  time.Now(),
	}
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/chart", s.handleChart).Methods(http.MethodGet)
	s.router.HandleFunc("/chart.png", s.handleChartPNG).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	if metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return s
}

// Handler returns the routed handler wrapped with access logging.
func (s *Server) Handler() http.Handler {
	return handlers.CombinedLoggingHandler(accessLogWriter{}, s.router)
}

// accessLogWriter feeds gorilla's access lines into the leveled logger.
type accessLogWriter struct{}

func (accessLogWriter) Write(p []byte) (int, error) {
	logging.Debugf("http: %s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// listRow is one entry of the reverse-chronological reading list.
type listRow struct {
	Time        string
	Temperature string
	Humidity    string
	Soil        string
	Rain        string
	CO2         string
}

type indexData struct {
	Cards    viewstate.Cards
	Error    string
	Loading  bool
	Rows     []listRow
	ChartRev uint64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	// The list shows newest first; the store keeps oldest-first for the chart.
	rows := make([]listRow, 0, len(snap.History))
	for i := len(snap.History) - 1; i >= 0; i-- {
		rec := snap.History[i]
		rows = append(rows, listRow{
			Time:        types.DisplayTime(rec.Timestamp),
			Temperature: types.FormatValue(rec.Temperature),
			Humidity:    types.FormatValue(rec.Humidity),
			Soil:        types.FormatOptional(rec.Soil),
			Rain:        types.FormatOptional(rec.Rain),
			CO2:         types.FormatOptional(rec.CO2),
		})
	}

	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, indexData{
		Cards:    snap.Cards,
		Error:    snap.Error,
		Loading:  snap.LoadingCurrent || snap.LoadingHistory,
		Rows:     rows,
		ChartRev: s.renderer.Revision(),
	})
	if err != nil {
		logging.Errorf("index template: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	page := s.renderer.HTML()
	if page == nil {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<!DOCTYPE html><html><body>chart not ready</body></html>")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	spec := chartspec.Build(s.store.History())
	w.Header().Set("Content-Type", "image/png")
	if err := dashview.RenderPNG(spec, w); err != nil {
		logging.Errorf("chart snapshot: %v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok uptime=%s", time.Since(s.started).Round(time.Second))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="5">
<title>flower station</title>
<style>
body { font-family: sans-serif; margin: 1.5rem; background: #f7f9f7; color: #223; }
.banner { background: #fde8e8; border: 1px solid #e0b4b4; color: #912d2b; padding: .6rem 1rem; border-radius: 4px; margin-bottom: 1rem; }
.cards { display: flex; flex-wrap: wrap; gap: .8rem; margin-bottom: 1rem; }
.card { background: #fff; border: 1px solid #dde5dd; border-radius: 6px; padding: .8rem 1.2rem; min-width: 9rem; }
.card .label { font-size: .8rem; color: #667; }
.card .value { font-size: 1.6rem; }
iframe { width: 100%; height: 440px; border: 1px solid #dde5dd; border-radius: 6px; background: #fff; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; background: #fff; }
th, td { border: 1px solid #dde5dd; padding: .4rem .7rem; text-align: left; font-size: .9rem; }
th { background: #eef3ee; }
.muted { color: #889; font-size: .85rem; }
</style>
</head>
<body>
<h1>flower station</h1>
{{if .Error}}<div class="banner">{{.Error}}</div>{{end}}
<div class="cards">
<div class="card"><div class="label">temperature (°C)</div><div class="value">{{.Cards.Temperature}}</div></div>
<div class="card"><div class="label">humidity (%)</div><div class="value">{{.Cards.Humidity}}</div></div>
<div class="card"><div class="label">soil moisture</div><div class="value">{{.Cards.Soil}}</div></div>
<div class="card"><div class="label">rain level</div><div class="value">{{.Cards.Rain}}</div></div>
<div class="card"><div class="label">CO2 (ppm)</div><div class="value">{{.Cards.CO2}}</div></div>
<div class="card"><div class="label">reading time</div><div class="value" style="font-size:1rem">{{if .Cards.Timestamp}}{{.Cards.Timestamp}}{{else}}--{{end}}</div></div>
</div>
<iframe src="/chart?rev={{.ChartRev}}" title="recent readings"></iframe>
<table>
<tr><th>time</th><th>temperature</th><th>humidity</th><th>soil</th><th>rain</th><th>CO2</th></tr>
{{range .Rows}}<tr><td>{{.Time}}</td><td>{{.Temperature}}</td><td>{{.Humidity}}</td><td>{{.Soil}}</td><td>{{.Rain}}</td><td>{{.CO2}}</td></tr>
{{else}}<tr><td colspan="6" class="muted">no readings yet</td></tr>{{end}}
</table>
{{if .Loading}}<p class="muted">refreshing…</p>{{end}}
</body>
</html>
`))
