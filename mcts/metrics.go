package mcts

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one GrowTree call.
type SearchMetric struct {
	StartTime      time.Time
	Duration       time.Duration
	Iterations     int64 // select-expand-rollout cycles completed
	Rollouts       int64 // simulations run; exceeds Iterations in parallel mode
	TerminalVisits int64 // iterations that landed on an already-terminal frontier
	TreeReused     bool  // whether the preceding advance kept a subtree
}

// MetricsCollector gathers search statistics. Implementations must be safe
// for concurrent use by rollout workers.
type MetricsCollector interface {
	Start()
	AddIteration()
	AddRollouts(n int64)
	AddTerminalVisit()
	SetTreeReused(value bool)
	Complete() SearchMetric
}

type metricsCollector struct {
	startTime      time.Time
	iterations     atomic.Int64
	rollouts       atomic.Int64
	terminalVisits atomic.Int64
	treeReused     atomic.Bool
}

// NewMetricsCollector returns a collector backed by atomic counters.
func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

func (m *metricsCollector) Start() {
	m.startTime = time.Now()
	m.iterations.Store(0)
	m.rollouts.Store(0)
	m.terminalVisits.Store(0)
}

func (m *metricsCollector) AddIteration() {
	m.iterations.Add(1)
}

func (m *metricsCollector) AddRollouts(n int64) {
	m.rollouts.Add(n)
}

func (m *metricsCollector) AddTerminalVisit() {
	m.terminalVisits.Add(1)
}

func (m *metricsCollector) SetTreeReused(value bool) {
	m.treeReused.Store(value)
}

func (m *metricsCollector) Complete() SearchMetric {
	return SearchMetric{
		StartTime:      m.startTime,
		Duration:       time.Since(m.startTime),
		Iterations:     m.iterations.Load(),
		Rollouts:       m.rollouts.Load(),
		TerminalVisits: m.terminalVisits.Load(),
		TreeReused:     m.treeReused.Load(),
	}
}

type noMetricsCollector struct{}

// NewNoMetricsCollector returns a collector that discards everything.
func NewNoMetricsCollector() MetricsCollector {
	return &noMetricsCollector{}
}

func (m *noMetricsCollector) Start()                 {}
func (m *noMetricsCollector) AddIteration()          {}
func (m *noMetricsCollector) AddRollouts(n int64)    {}
func (m *noMetricsCollector) AddTerminalVisit()      {}
func (m *noMetricsCollector) SetTreeReused(v bool)   {}
func (m *noMetricsCollector) Complete() SearchMetric { return SearchMetric{} }
