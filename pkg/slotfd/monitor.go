package slotfd

// monitor.go: statistics for propagation and search

import (
	"sync"
	"time"
)

// SolverStats holds statistics about one propagation run.
type SolverStats struct {
	// Search statistics (exact enumeration)
	NodesExplored  int64         `json:"nodes_explored"`
	Backtracks     int64         `json:"backtracks"`
	SolutionsFound int64         `json:"solutions_found"`
	MaxDepth       int           `json:"max_depth"`
	SearchTime     time.Duration `json:"search_time"`

	// Propagation statistics
	Passes          int           `json:"passes"`
	Removals        int           `json:"removals"`
	SubsetsChecked  int64         `json:"subsets_checked"`
	PropagationTime time.Duration `json:"propagation_time"`
}

// SolverMonitor collects SolverStats. A nil *SolverMonitor is valid and
// records nothing, so strategies can call it unconditionally.
type SolverMonitor struct {
	mu        sync.Mutex
	stats     SolverStats
	propStart time.Time
}

// NewSolverMonitor creates a new solver monitor
func NewSolverMonitor() *SolverMonitor {
	return &SolverMonitor{}
}

// GetStats returns a copy of the current statistics
func (m *SolverMonitor) GetStats() SolverStats {
	if m == nil {
		return SolverStats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// StartPropagation marks the beginning of a propagation run
func (m *SolverMonitor) StartPropagation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.propStart = time.Now()
}

// EndPropagation marks the end of a propagation run
func (m *SolverMonitor) EndPropagation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.propStart.IsZero() {
		m.stats.PropagationTime += time.Since(m.propStart)
		m.propStart = time.Time{}
	}
}

// RecordSearchTime adds d to the time spent in exhaustive search
func (m *SolverMonitor) RecordSearchTime(d time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SearchTime += d
}

// RecordNodes records n explored search nodes
func (m *SolverMonitor) RecordNodes(n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.NodesExplored += n
}

// RecordBacktracks records n backtrack operations
func (m *SolverMonitor) RecordBacktracks(n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Backtracks += n
}

// RecordSolutions records n complete assignments
func (m *SolverMonitor) RecordSolutions(n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SolutionsFound += n
}

// RecordDepth records the current search depth
func (m *SolverMonitor) RecordDepth(depth int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.stats.MaxDepth {
		m.stats.MaxDepth = depth
	}
}

// RecordPass records one fixpoint iteration
func (m *SolverMonitor) RecordPass() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Passes++
}

// RecordRemovals records n slots removed from domains
func (m *SolverMonitor) RecordRemovals(n int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Removals += n
}

// RecordSubsets records n item subsets examined by Hall-set elimination
func (m *SolverMonitor) RecordSubsets(n int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.SubsetsChecked += n
}
