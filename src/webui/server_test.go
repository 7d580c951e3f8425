package webui

import (
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/dashview"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/fetcher"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/telemetry"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/types"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/viewstate"
)

func fp(v float64) *float64 { return &v }

func testReading(id string, sec int, temp float64) types.SensorReading {
	return types.SensorReading{
		ID:          id,
		Timestamp:   time.Date(2026, 8, 22, 14, 0, sec, 0, time.Local),
		Temperature: temp,
		Humidity:    50,
		Soil:        fp(400),
		Rain:        fp(1),
		CO2:         fp(800),
	}
}

func newTestServer(t *testing.T) (*Server, *viewstate.Store, *dashview.EChartsRenderer) {
	t.Helper()
	store := viewstate.NewStore()
	renderer := dashview.NewEChartsRenderer()
	return NewServer(store, renderer, telemetry.New()), store, renderer
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexInitialState(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, types.ValuePending) {
		t.Error("placeholder cards missing")
	}
	if !strings.Contains(body, "no readings yet") {
		t.Error("empty-list row missing")
	}
	if strings.Contains(body, `class="banner"`) {
		t.Error("banner shown without an error")
	}
}

func TestIndexShowsCardsAndNewestFirstList(t *testing.T) {
	s, store, _ := newTestServer(t)
	latest := testReading("c", 10, 22.5)
	store.LatestSucceeded(&latest)
	store.HistorySucceeded(1, []types.SensorReading{
		testReading("a", 0, 20),
		testReading("b", 5, 21),
		testReading("c", 10, 22.5),
	})

	body := get(t, s, "/").Body.String()
	if !strings.Contains(body, "22.5") {
		t.Error("card value missing")
	}
	// The list is reverse-chronological: newest timestamp first.
	first := strings.Index(body, "14:00:10")
	last := strings.Index(body, "14:00:00")
	if first == -1 || last == -1 {
		t.Fatalf("list rows missing from page:\n%s", body)
	}
	if first > last {
		t.Error("list is not newest-first")
	}
}

func TestIndexShowsErrorBanner(t *testing.T) {
	s, store, _ := newTestServer(t)
	store.LatestFailed(fetcher.KindNetwork)
	body := get(t, s, "/").Body.String()
	if !strings.Contains(body, `class="banner"`) {
		t.Fatal("banner missing")
	}
	if !strings.Contains(body, viewstate.MsgNetwork) {
		t.Error("banner text missing")
	}
	if !strings.Contains(body, types.ValueError) {
		t.Error("error cards missing")
	}
}

func TestChartRouteBeforeAndAfterRender(t *testing.T) {
	s, _, renderer := newTestServer(t)
	if body := get(t, s, "/chart").Body.String(); !strings.Contains(body, "not ready") {
		t.Errorf("unbound chart page = %q", body)
	}

	if err := renderer.Init(); err != nil {
		t.Fatal(err)
	}
	renderer.SetOption(chartspec.Build([]types.SensorReading{testReading("a", 0, 20)}), true)
	if body := get(t, s, "/chart").Body.String(); !strings.Contains(body, "echarts") {
		t.Error("chart page missing after render")
	}
}

func TestChartPNGRoute(t *testing.T) {
	s, store, _ := newTestServer(t)
	store.HistorySucceeded(1, []types.SensorReading{
		testReading("a", 0, 20),
		testReading("b", 5, 21),
	})
	rec := get(t, s, "/chart.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("body is not a PNG: %v", err)
	}
}

func TestChartPNGRouteEmptyHistory(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/chart.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, err := png.Decode(rec.Body); err != nil {
		t.Errorf("placeholder body is not a PNG: %v", err)
	}
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPostRejected(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
