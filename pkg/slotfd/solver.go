package slotfd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// SolverConfig holds the policy choices of one pipeline run.
type SolverConfig struct {
	// Strategy names the propagation strategy, see StrategyNames.
	Strategy string

	// Residual selects the domain for wanted items that no group mentions.
	Residual ResidualPolicy

	// QueryMode decides how the final query treats items without a domain.
	QueryMode QueryMode

	// Order is the item order of exact enumeration.
	Order EnumerationOrder

	// HallMaxItems caps the power-set search of Hall-set elimination.
	HallMaxItems int

	// StepBudget caps the nodes visited by exact enumeration, 0 for none.
	StepBudget int64

	// Timeout bounds propagation, 0 for none.
	Timeout time.Duration

	// AllowUnderconstrained accepts answers with more slots than requested
	// items instead of failing with an *UnderconstrainedError.
	AllowUnderconstrained bool
}

// DefaultSolverConfig returns the configuration used when none is given:
// exact enumeration, global-minus-claimed residuals and strict queries.
func DefaultSolverConfig() *SolverConfig {
	return &SolverConfig{
		Strategy:     StrategyExact,
		Residual:     ResidualGlobalMinusClaimed,
		QueryMode:    QueryStrict,
		Order:        OrderSmallestFirst,
		HallMaxItems: DefaultHallMaxItems,
	}
}

// Problem is the parsed input of one run.
type Problem struct {
	Slots  int      `json:"slots" yaml:"slots"`
	Wanted []string `json:"wanted" yaml:"wanted"`
	Groups []Group  `json:"groups" yaml:"groups"`
}

// Result describes a pipeline run. Fields are filled as far as the run got,
// so a Result accompanying an error still shows the domains before and
// after propagation where available.
type Result struct {
	Strategy string `json:"strategy"`

	// Answer is nil unless the query ran.
	Answer *Answer `json:"-"`

	// Expanded lists the wanted items that received a residual domain.
	Expanded []string `json:"expanded,omitempty"`

	// Candidates is the store after ingestion and expansion.
	Candidates []ItemDomain `json:"candidates,omitempty"`

	// Narrowed is the store after propagation.
	Narrowed []ItemDomain `json:"narrowed,omitempty"`

	// Underconstrained is set when the answer has more slots than
	// requested items and the configuration allows it.
	Underconstrained bool `json:"underconstrained"`

	Stats SolverStats `json:"stats"`

	// Store is the final store.
	Store *Store `json:"-"`
}

// Solver runs the pipeline ingest, expand, propagate and query.
//
// A Solver holds no per-run state, so Solve may be called from several
// goroutines at once; each call builds its own Store. A monitor installed
// with SetMonitor is shared by all calls and accumulates their statistics.
type Solver struct {
	config  *SolverConfig
	logger  *zap.Logger
	monitor *SolverMonitor
}

// NewSolver creates a solver with the default configuration.
func NewSolver() *Solver {
	return NewSolverWithConfig(nil)
}

// NewSolverWithConfig creates a solver for config. A nil config uses
// DefaultSolverConfig.
func NewSolverWithConfig(config *SolverConfig) *Solver {
	if config == nil {
		config = DefaultSolverConfig()
	}
	return &Solver{config: config, logger: zap.NewNop()}
}

// SetLogger routes the solver's diagnostics to logger.
func (s *Solver) SetLogger(logger *zap.Logger) {
	s.logger = nopIfNil(logger)
}

// SetMonitor collects statistics of every run in monitor.
func (s *Solver) SetMonitor(monitor *SolverMonitor) {
	s.monitor = monitor
}

// Config returns the solver configuration.
func (s *Solver) Config() *SolverConfig {
	return s.config
}

// Solve runs the whole pipeline on p.
//
// Configuration problems are returned with a nil Result. Every other error
// is one of the kinds in errors.go and comes with the partial Result.
func (s *Solver) Solve(ctx context.Context, p *Problem) (*Result, error) {
	if p == nil {
		return nil, errors.New("nil problem")
	}
	if p.Slots < 0 {
		return nil, fmt.Errorf("slot count %d is negative", p.Slots)
	}

	monitor := s.monitor
	if monitor == nil {
		monitor = NewSolverMonitor()
	}
	strategy, err := NewStrategy(s.config.Strategy, s.config, s.logger, monitor)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With(zap.String("strategy", strategy.Name()))
	store := NewStore(p.Slots)
	res := &Result{Strategy: strategy.Name(), Store: store}
	defer func() { res.Stats = monitor.GetStats() }()

	if err := store.IngestGroups(p.Groups); err != nil {
		return res, err
	}
	res.Expanded = store.ExpandUnknown(p.Wanted, s.config.Residual)
	res.Candidates = store.Snapshot()
	logger.Debug("domains ingested",
		zap.Int("slots", p.Slots),
		zap.Int("groups", len(p.Groups)),
		zap.Int("items", store.Len()),
		zap.Strings("expanded", res.Expanded))

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}
	err = strategy.Propagate(ctx, store)
	res.Narrowed = store.Snapshot()
	if err != nil {
		logger.Debug("propagation failed", zap.Error(err))
		return res, err
	}

	answer, err := store.Query(p.Wanted, s.config.QueryMode)
	if err != nil {
		return res, err
	}
	res.Answer = answer

	if err := answer.Check(); err != nil {
		var inf *InfeasibleError
		if errors.As(err, &inf) {
			inf.Strategy = strategy.Name()
		}
		if !s.config.AllowUnderconstrained || !errors.Is(err, ErrUnderconstrained) {
			return res, err
		}
		res.Underconstrained = true
		logger.Info("answer is underconstrained",
			zap.Stringer("slots", answer.Slots),
			zap.Int("requested", answer.Requested))
	}
	return res, nil
}

// Solve runs p with the default configuration.
func Solve(ctx context.Context, p *Problem) (*Result, error) {
	return NewSolver().Solve(ctx, p)
}
