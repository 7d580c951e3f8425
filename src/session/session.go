// Package session runs one dashboard's poll loop: an immediate fetch of the
// latest reading followed by the recent history, then the same pair every
// interval until the session stops. Fetch results land in the view state
// store; a store subscription rebuilds and re-renders the chart.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/dashview"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/fetcher"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/logging"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/telemetry"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/viewstate"
)

const (
	// DefaultInterval is the steady-state poll period.
	DefaultInterval = 5 * time.Second
	// DefaultHistoryLimit is how many recent readings the chart shows.
	DefaultHistoryLimit = 7
)

// Config carries the tunable parts of a session. Zero values fall back to
// the defaults above.
type Config struct {
	Interval     time.Duration
	HistoryLimit int
}

// Session owns one poll loop and its chart binding.
type Session struct {
	ID string

	store   *viewstate.Store
	client  *fetcher.Client
	chart   *dashview.Manager
	metrics *telemetry.Metrics

	interval     time.Duration
	historyLimit int

	// historySeq tags each history request so a slow delivery arriving after
	// a newer one is dropped by the store instead of applied.
	historySeq atomic.Uint64

	// alive gates result application: a fetch that completes after Stop must
	// not mutate the store or touch the chart.
	alive atomic.Bool

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}
}

// New wires a session. metrics may be nil.
func New(store *viewstate.Store, client *fetcher.Client, chart *dashview.Manager, metrics *telemetry.Metrics, cfg Config) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	return &Session{
		ID:           uuid.NewString(),
		store:        store,
		client:       client,
		chart:        chart,
		metrics:      metrics,
		interval:     cfg.Interval,
		historyLimit: cfg.HistoryLimit,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start subscribes the chart to store changes and launches the poll loop,
// which fetches once immediately. Calling Start twice is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.alive.Store(true)
	s.store.Subscribe(func() {
		if !s.alive.Load() {
			return
		}
		if err := s.chart.Render(chartspec.Build(s.store.History())); err != nil {
			logging.Warnf("session %s: chart render: %v", s.ID, err)
		}
	})

	logging.Infof("session %s: polling every %s, history limit %d", s.ID, s.interval, s.historyLimit)
	go s.run()
}

func (s *Session) run() {
	defer close(s.done)

	// First cycle runs immediately; the ticker covers the rest.
	go s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// Each cycle runs on its own goroutine so a slow endpoint never
			// delays the schedule; the store's sequence tagging keeps
			// overlapping history deliveries consistent.
			go s.tick()
		}
	}
}

// tick runs one poll cycle: latest reading first, then the history window.
// Failures are recorded and the cycle ends; they never stop the schedule.
func (s *Session) tick() {
	s.metrics.PollTick()
	ctx := context.Background()

	s.store.BeginLatest()
	latest, err := s.client.FetchLatest(ctx)
	if !s.alive.Load() {
		return
	}
	if err != nil {
		kind := fetcher.KindOf(err)
		logging.Warnf("session %s: latest fetch failed (%s): %v", s.ID, kind, err)
		s.metrics.FetchError(kind.String())
		s.store.LatestFailed(kind)
	} else {
		if latest != nil {
			s.metrics.ReadingsFetched(1, float64(time.Now().Unix()))
		}
		s.store.LatestSucceeded(latest)
	}

	seq := s.historySeq.Add(1)
	s.store.BeginHistory()
	s.chart.SetLoading(true)
	history, err := s.client.FetchHistory(ctx, s.historyLimit)
	if !s.alive.Load() {
		return
	}
	if err != nil {
		kind := fetcher.KindOf(err)
		logging.Warnf("session %s: history fetch failed (%s): %v", s.ID, kind, err)
		s.metrics.FetchError(kind.String())
		s.store.HistoryFailed(seq, kind, fetcher.MessageOf(err))
	} else {
		s.metrics.ReadingsFetched(len(history), float64(time.Now().Unix()))
		s.store.HistorySucceeded(seq, history)
	}
	s.chart.SetLoading(false)
}

// Stop halts the schedule and tears the chart down. Safe to call before
// Start and safe to call twice; the schedule is cancelled exactly once.
// In-flight fetches are not interrupted, but their results are discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	s.alive.Store(false)
	close(s.stop)
	if started {
		<-s.done
	}
	s.chart.Dispose()
	logging.Infof("session %s: stopped", s.ID)
}
