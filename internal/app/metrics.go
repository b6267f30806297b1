package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/textdesk/internal/engine"
)

// Metrics counts what happened to the session while the application ran.
type Metrics struct {
	mu       sync.RWMutex
	bySource map[engine.Source]uint64

	changes      atomic.Uint64
	saves        atomic.Uint64
	saveFailures atomic.Uint64
	reloads      atomic.Uint64
	lastRevision atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		bySource:  make(map[engine.Source]uint64),
		startTime: time.Now(),
	}
}

// RecordChange counts a committed session change.
func (m *Metrics) RecordChange(ch engine.Change) {
	m.changes.Add(1)
	m.lastRevision.Store(ch.Revision)

	m.mu.Lock()
	m.bySource[ch.Source]++
	m.mu.Unlock()
}

// RecordSave counts a background save.
func (m *Metrics) RecordSave(err error) {
	if err != nil {
		m.saveFailures.Add(1)
		return
	}
	m.saves.Add(1)
}

// RecordReload counts a configuration reload.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	bySource := make(map[engine.Source]uint64, len(m.bySource))
	for k, v := range m.bySource {
		bySource[k] = v
	}
	m.mu.RUnlock()

	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		Changes:      m.changes.Load(),
		BySource:     bySource,
		Saves:        m.saves.Load(),
		SaveFailures: m.saveFailures.Load(),
		Reloads:      m.reloads.Load(),
		LastRevision: m.lastRevision.Load(),
	}
}

// MetricsSnapshot is a point-in-time copy of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	Changes      uint64
	BySource     map[engine.Source]uint64
	Saves        uint64
	SaveFailures uint64
	Reloads      uint64
	LastRevision uint64
}

// Dictated returns the number of dictation edits.
func (s MetricsSnapshot) Dictated() uint64 {
	return s.BySource[engine.SourceDictation]
}

// Metrics returns the application's metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
