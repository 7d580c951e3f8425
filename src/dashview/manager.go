// Package dashview owns the stateful chart surface: a lifecycle manager
// enforcing the Uninitialized → Bound → Disposed state machine over a
// Renderer, plus the two renderers shipped with the dashboard (live ECharts
// HTML and headless PNG snapshots).
package dashview

import (
	"errors"
	"sync"
	"time"

	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/chartspec"
	"github.com/idea-21/WEB-Smart-Flower-Cultivation-System/src/logging"
)

// Renderer is the external charting surface contract. Implementations are
// never called directly by other components; every operation goes through
// the Manager, which guarantees no call ever reaches a disposed instance.
type Renderer interface {
	Init() error
	// SetOption applies a full chart configuration. replace=true demands
	// destructive semantics: nothing from a previous configuration may
	// survive the update.
	SetOption(spec chartspec.Spec, replace bool)
	Resize()
	Dispose()
	ShowLoading()
	HideLoading()
}

// ErrDisposed is returned when a render is requested after teardown.
var ErrDisposed = errors.New("chart manager disposed")

// DefaultResizeDelay collapses rapid resize bursts into one redraw.
const DefaultResizeDelay = 200 * time.Millisecond

type managerState int

const (
	stateUninitialized managerState = iota
	stateBound
	stateDisposed
)

// Manager holds at most one live renderer binding per dashboard session:
// created lazily on the first render, fed full-replace specs afterwards, and
// torn down exactly once.
type Manager struct {
	mu          sync.Mutex
	state       managerState
	r           Renderer
	loading     bool
	resizeDelay time.Duration
	resizeTimer *time.Timer
}

// NewManager wraps a renderer. The renderer is not initialized until the
// first Render call.
func NewManager(r Renderer) *Manager {
	return &Manager{r: r, resizeDelay: DefaultResizeDelay}
}

// SetResizeDelay overrides the debounce window; tests shorten it.
func (m *Manager) SetResizeDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.resizeDelay = d
	}
}

// Render applies a freshly built spec. The first call binds the renderer;
// every later call is a destructive full replace, clearing any loading
// overlay immediately before the update.
func (m *Manager) Render(spec chartspec.Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case stateDisposed:
		return ErrDisposed
	case stateUninitialized:
		if err := m.r.Init(); err != nil {
			return err
		}
		m.state = stateBound
		logging.Debugf("chart renderer bound")
	}
	if m.loading {
		m.r.HideLoading()
		m.loading = false
	}
	m.r.SetOption(spec, true)
	return nil
}

// SetLoading toggles the loading overlay. The overlay only exists once an
// instance does; before the first render this is a no-op, and after disposal
// nothing can be shown.
func (m *Manager) SetLoading(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateBound || on == m.loading {
		return
	}
	if on {
		m.r.ShowLoading()
	} else {
		m.r.HideLoading()
	}
	m.loading = on
}

// RequestResize records a viewport resize event. Bursts collapse: the
// renderer sees exactly one Resize, one debounce window after the last
// event. Events before binding or after disposal are ignored.
func (m *Manager) RequestResize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateBound {
		return
	}
	if m.resizeTimer != nil {
		m.resizeTimer.Stop()
	}
	m.resizeTimer = time.AfterFunc(m.resizeDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.resizeTimer = nil
		if m.state != stateBound {
			return
		}
		m.r.Resize()
	})
}

// Dispose tears the binding down: releases the renderer, cancels any pending
// debounced resize, and makes the terminal state permanent. Idempotent: a
// second call is a no-op, never a fault, and works even if nothing was ever
// rendered.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == stateDisposed {
		return
	}
	if m.resizeTimer != nil {
		m.resizeTimer.Stop()
		m.resizeTimer = nil
	}
	if m.state == stateBound {
		m.r.Dispose()
	}
	m.state = stateDisposed
	logging.Debugf("chart renderer disposed")
}

// Disposed reports whether teardown has completed.
func (m *Manager) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateDisposed
}
