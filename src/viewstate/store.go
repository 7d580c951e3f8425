// Package viewstate holds the single source of truth for one dashboard
// session: the current card values, the historical reading sequence, loading
// flags and the user-facing error banner. Card/list rendering and the chart
// builder both consume snapshots of this store and never talk to the
// transport directly.
package viewstate

import (
	"sync"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/fetcher"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/types"
)

// Banner messages by failure category. Network and origin refusals get
// distinct fixed texts; anything else collapses to the generic one.
const (
	MsgNetwork       = "sensor endpoint unreachable, check the station connection"
	MsgOriginBlocked = "the sensor endpoint refused the request (origin not allowed)"
	MsgCurrentFailed = "failed to load current data"
	MsgHistoryFailed = "failed to load history data"
)

// Cards are the five current-value displays plus the reading time. Values
// are display strings so sentinel substitution happens exactly once, here.
type Cards struct {
	Temperature string
	Humidity    string
	Soil        string
	Rain        string
	CO2         string
	Timestamp   string
}

func pendingCards() Cards {
	return Cards{
		Temperature: types.ValuePending,
		Humidity:    types.ValuePending,
		Soil:        types.ValuePending,
		Rain:        types.ValuePending,
		CO2:         types.ValuePending,
	}
}

func errorCards() Cards {
	return Cards{
		Temperature: types.ValueError,
		Humidity:    types.ValueError,
		Soil:        types.ValueError,
		Rain:        types.ValueError,
		CO2:         types.ValueError,
	}
}

// errOrigin tracks which fetch path owns the banner so history failures can
// never clobber a current-data error.
type errOrigin int

const (
	originNone errOrigin = iota
	originCurrent
	originHistory
)

// Snapshot is an immutable copy of the view state for one render pass.
type Snapshot struct {
	Cards          Cards
	History        []types.SensorReading
	LoadingCurrent bool
	LoadingHistory bool
	Error          string
}

// Store is mutated only by fetch completions and the poll scheduler. Every
// completed mutation emits one change notification to subscribers.
type Store struct {
	mu             sync.Mutex
	cards          Cards
	history        []types.SensorReading
	loadingCurrent bool
	loadingHistory bool
	errText        string
	origin         errOrigin
	historySeq     uint64
	subs           []func()
}

// NewStore returns a store in the pre-first-fetch placeholder state.
func NewStore() *Store {
	return &Store{cards: pendingCards()}
}

// Subscribe registers a change listener invoked after each completed
// mutation. Listeners run on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Snapshot returns a copy safe to read while mutations continue.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	hist := make([]types.SensorReading, len(s.history))
	copy(hist, s.history)
	return Snapshot{
		Cards:          s.cards,
		History:        hist,
		LoadingCurrent: s.loadingCurrent,
		LoadingHistory: s.loadingHistory,
		Error:          s.errText,
	}
}

// History returns a copy of the ordered reading sequence (oldest-first).
func (s *Store) History() []types.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	hist := make([]types.SensorReading, len(s.history))
	copy(hist, s.history)
	return hist
}

// BeginLatest marks the current-value fetch in flight.
func (s *Store) BeginLatest() {
	s.mu.Lock()
	s.loadingCurrent = true
	s.mu.Unlock()
	s.notify()
}

// BeginHistory marks the history fetch in flight.
func (s *Store) BeginHistory() {
	s.mu.Lock()
	s.loadingHistory = true
	s.mu.Unlock()
	s.notify()
}

// LatestSucceeded applies a completed current-value fetch. A nil reading is
// the endpoint's "no data yet" answer: the cards stay at the placeholder and
// no error is raised. A success clears a current-origin banner but never a
// history-origin one.
func (s *Store) LatestSucceeded(r *types.SensorReading) {
	s.mu.Lock()
	s.loadingCurrent = false
	if r == nil {
		s.cards = pendingCards()
	} else {
		s.cards = Cards{
			Temperature: types.FormatValue(r.Temperature),
			Humidity:    types.FormatValue(r.Humidity),
			Soil:        types.FormatOptional(r.Soil),
			Rain:        types.FormatOptional(r.Rain),
			CO2:         types.FormatOptional(r.CO2),
			Timestamp:   types.DisplayTime(r.Timestamp),
		}
	}
	if s.origin == originCurrent {
		s.errText = ""
		s.origin = originNone
	}
	s.mu.Unlock()
	s.notify()
}

// LatestFailed applies a failed current-value fetch: every card switches to
// the error sentinel (stale numbers must never survive a failure) and the
// banner takes the category message. Current-data errors always win the
// banner.
func (s *Store) LatestFailed(kind fetcher.ErrorKind) {
	s.mu.Lock()
	s.loadingCurrent = false
	s.cards = errorCards()
	s.errText = currentMessage(kind)
	s.origin = originCurrent
	s.mu.Unlock()
	s.notify()
}

func currentMessage(kind fetcher.ErrorKind) string {
	switch kind {
	case fetcher.KindNetwork:
		return MsgNetwork
	case fetcher.KindOriginBlocked:
		return MsgOriginBlocked
	default:
		return MsgCurrentFailed
	}
}

// HistorySucceeded applies a completed history fetch tagged with its request
// sequence number. Deliveries older than the newest applied one are dropped,
// so a slow response can never replace fresher chart data. Returns whether
// the delivery was applied. A success clears a history-origin banner.
func (s *Store) HistorySucceeded(seq uint64, readings []types.SensorReading) bool {
	s.mu.Lock()
	if seq < s.historySeq {
		s.mu.Unlock()
		return false
	}
	s.historySeq = seq
	s.loadingHistory = false
	s.history = readings
	if s.origin == originHistory {
		s.errText = ""
		s.origin = originNone
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// HistoryFailed applies a failed history fetch: the sequence is cleared to
// empty so the chart falls back to its placeholder. The banner is taken only
// when no current-data error is displayed; a fresher history error does
// replace an older history-origin one. serverMsg, when non-empty, is the
// endpoint-provided explanation.
func (s *Store) HistoryFailed(seq uint64, kind fetcher.ErrorKind, serverMsg string) bool {
	s.mu.Lock()
	if seq < s.historySeq {
		s.mu.Unlock()
		return false
	}
	s.historySeq = seq
	s.loadingHistory = false
	s.history = nil
	if s.origin != originCurrent {
		s.errText = historyMessage(kind, serverMsg)
		s.origin = originHistory
	}
	s.mu.Unlock()
	s.notify()
	return true
}

func historyMessage(kind fetcher.ErrorKind, serverMsg string) string {
	switch kind {
	case fetcher.KindNetwork:
		return MsgNetwork
	case fetcher.KindOriginBlocked:
		return MsgOriginBlocked
	default:
		if serverMsg != "" {
			return serverMsg
		}
		return MsgHistoryFailed
	}
}
