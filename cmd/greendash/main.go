// greendash serves a browser dashboard for one flower-station sensor
// endpoint: current-value cards, a rolling five-series chart of the recent
// readings, and the same readings as a newest-first list.
//
// Two modes:
//  1. Serve mode (default): poll the endpoint every interval and serve the
//     dashboard over HTTP until interrupted.
//  2. Snapshot mode (-snapshot <file>): fetch once, write the chart as a PNG,
//     and exit. Useful headlessly and in CI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/dashview"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/fetcher"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/logging"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/session"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/telemetry"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/viewstate"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/webui"
)

func main() {
	endpoint := flag.String("endpoint", "", "sensor endpoint URL (required)")
	interval := flag.Duration("interval", session.DefaultInterval, "poll interval")
	historyLimit := flag.Int("history", session.DefaultHistoryLimit, "number of recent readings to chart")
	listen := flag.String("listen", ":8080", "HTTP listen address")
	logLevel := flag.String("loglevel", "info", "log level: debug|info|warn|error")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request fetch timeout")
	snapshot := flag.String("snapshot", "", "fetch once, write the chart PNG to this file, and exit")
	flag.Parse()

	if err := logging.SetLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -loglevel: %v\n", err)
		os.Exit(2)
	}
	if *endpoint == "" {
		fmt.Fprintln(os.Stderr, "missing required -endpoint")
		flag.Usage()
		os.Exit(2)
	}

	client := fetcher.New(*endpoint, *timeout)

	if *snapshot != "" {
		if err := runSnapshotMode(client, *historyLimit, *snapshot); err != nil {
			logging.Errorf("snapshot mode: %v", err)
			os.Exit(1)
		}
		return
	}

	store := viewstate.NewStore()
	renderer := dashview.NewEChartsRenderer()
	chart := dashview.NewManager(renderer)
	metrics := telemetry.New()

	sess := session.New(store, client, chart, metrics, session.Config{
		Interval:     *interval,
		HistoryLimit: *historyLimit,
	})
	sess.Start()

	srv := &http.Server{
		Addr:    *listen,
		Handler: webui.NewServer(store, renderer, metrics).Handler(),
	}
	go func() {
		logging.Infof("dashboard listening on %s (endpoint %s)", *listen, *endpoint)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf("http server: %v", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logging.Infof("shutting down")

	sess.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warnf("http shutdown: %v", err)
	}
}

// runSnapshotMode performs a single history fetch and renders it to a PNG.
func runSnapshotMode(client *fetcher.Client, historyLimit int, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history, err := client.FetchHistory(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dashview.RenderPNG(chartspec.Build(history), f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logging.Infof("wrote %s (%d readings)", path, len(history))
	return nil
}
