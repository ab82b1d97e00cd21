package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/slotfd/internal/config"
	"github.com/gitrdm/slotfd/internal/parallel"
	"github.com/gitrdm/slotfd/internal/puzzle"
	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// SolveOptions holds the flags of the solve command.
type SolveOptions struct {
	solverFlags
	Strategy string
	Workers  int
	Debug    bool
}

// solveData is the success payload of one input.
type solveData struct {
	Strategy         string              `json:"strategy"`
	Slots            []int               `json:"slots"`
	Requested        int                 `json:"requested"`
	Underconstrained bool                `json:"underconstrained"`
	Expanded         []string            `json:"expanded,omitempty"`
	Candidates       []slotfd.ItemDomain `json:"candidates,omitempty"`
	Narrowed         []slotfd.ItemDomain `json:"narrowed,omitempty"`
	Stats            *slotfd.SolverStats `json:"stats,omitempty"`

	universe int
}

// String renders the text form, without a trailing newline.
func (d solveData) String() string {
	var b strings.Builder
	writeDomains(&b, "candidates", d.Candidates, d.universe)
	writeDomains(&b, "narrowed", d.Narrowed, d.universe)
	fmt.Fprintf(&b, "slots: %s", domainString(d.universe, d.Slots))
	if d.Underconstrained {
		fmt.Fprintf(&b, "\nunderconstrained: %d slots for %d requested items", len(d.Slots), d.Requested)
	}
	if d.Stats != nil {
		fmt.Fprintf(&b, "\nstats: nodes=%d removals=%d passes=%d time=%s",
			d.Stats.NodesExplored, d.Stats.Removals, d.Stats.Passes, d.Stats.PropagationTime)
	}
	return b.String()
}

func writeDomains(b *strings.Builder, title string, domains []slotfd.ItemDomain, universe int) {
	if len(domains) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, d := range domains {
		fmt.Fprintf(b, "  %s: %s\n", d.Item, domainString(universe, d.Slots))
	}
}

// solveOutcome is the result of one input.
type solveOutcome struct {
	source  string
	problem *slotfd.Problem
	result  *slotfd.Result
	err     error
	readErr bool
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{}

	cmd := &cobra.Command{
		Use:   "solve [file...]",
		Short: "Narrow candidate slots and answer the query",
		Long: `Solve reads one or more puzzle files, narrows every item's candidate slots
and prints the slots the wanted items occupy.

Without arguments, or with "-", the puzzle is read from standard input.
Several files are solved concurrently and reported in the order given.`,
		Example: `  slotfd solve puzzle.txt
  slotfd solve --strategy hall --debug puzzle.yaml
  cat puzzle.txt | slotfd solve --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, rootOpts, opts, args)
		},
	}

	defaults := config.Default()
	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", defaults.Strategy,
		fmt.Sprintf("propagation strategy (%s)", strings.Join(slotfd.StrategyNames(), "|")))
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", defaults.Workers, "number of inputs solved concurrently")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "print candidate and narrowed domains")

	return cmd
}

func runSolve(cmd *cobra.Command, rootOpts *RootOptions, opts *SolveOptions, args []string) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	format, err := puzzle.ParseFormat(opts.inputFormat)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: ErrCodeConfig, Err: err}
	}
	cfg, sc, err := loadSettings(rootOpts, formatter, func(cfg *config.Config) {
		opts.apply(cmd, cfg)
		if cmd.Flags().Changed("strategy") {
			cfg.Strategy = opts.Strategy
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = opts.Workers
		}
	})
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	if countStdin(paths) > 1 {
		err := errors.New(`standard input ("-") can be given only once`)
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: ErrCodeInput, Err: err}
	}
	logger := rootOpts.logger()
	formatter.VerboseLog("solving %d input(s) with strategy %s, residual %s, query mode %s",
		len(paths), sc.Strategy, sc.Residual, sc.QueryMode)

	solver := slotfd.NewSolverWithConfig(sc)
	solver.SetLogger(logger)

	outcomes, err := solveAll(cmd, solver, paths, format, cfg.Workers)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: ErrCodeGeneric, Err: err}
	}

	var firstErr error
	for _, out := range outcomes {
		source := out.source
		if formatter.Format != "json" && len(paths) == 1 {
			source = ""
		}

		if out.err != nil {
			code, exit := classify(out.err)
			if out.readErr {
				code, exit = ErrCodeInput, ExitCommandError
			}
			logger.Debug("input failed", zap.String("source", out.source), zap.String("code", code), zap.Error(out.err))
			_ = formatter.ErrorFor(source, code, out.err.Error(), errorDetails(out.err, out.result, opts.Debug))
			if firstErr == nil {
				firstErr = &ExitError{Code: exit, Message: code, Err: out.err}
			}
			continue
		}

		data := solveData{
			Strategy:         out.result.Strategy,
			Slots:            out.result.Answer.Slots.ToSlice(),
			Requested:        out.result.Answer.Requested,
			Underconstrained: out.result.Underconstrained,
			universe:         out.problem.Slots,
		}
		if opts.Debug {
			data.Expanded = out.result.Expanded
			data.Candidates = out.result.Candidates
			data.Narrowed = out.result.Narrowed
		}
		if rootOpts.Verbose {
			stats := out.result.Stats
			data.Stats = &stats
		}
		if err := formatter.SuccessFor(source, data); err != nil {
			return err
		}
	}
	return firstErr
}

// solveAll solves every input on a worker pool and returns the outcomes in
// input order.
func solveAll(cmd *cobra.Command, solver *slotfd.Solver, paths []string, format puzzle.Format, workers int) ([]solveOutcome, error) {
	if workers > len(paths) {
		workers = len(paths)
	}
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes := make([]solveOutcome, len(paths))
	err := pool.Run(ctx, len(paths), func(i int) {
		out := &outcomes[i]
		out.source = paths[i]
		if out.source == "-" {
			out.source = "<stdin>"
		}

		p, err := readProblem(cmd, paths[i], format)
		if err != nil {
			out.err, out.readErr = err, true
			return
		}
		out.problem = p
		out.result, out.err = solver.Solve(ctx, p)
	})
	return outcomes, err
}

func countStdin(paths []string) int {
	n := 0
	for _, p := range paths {
		if p == "-" {
			n++
		}
	}
	return n
}

// errorDetails collects the structured context of a pipeline error.
func errorDetails(err error, res *slotfd.Result, debug bool) interface{} {
	details := map[string]interface{}{}

	var (
		malformed  *slotfd.MalformedGroupError
		infeasible *slotfd.InfeasibleError
		unknown    *slotfd.UnknownItemError
		under      *slotfd.UnderconstrainedError
		limit      *slotfd.SearchLimitError
	)
	switch {
	case errors.As(err, &malformed):
		details["group"] = malformed.Group
		details["items"] = malformed.Items
		details["slots"] = malformed.Slots
	case errors.As(err, &infeasible):
		if infeasible.Strategy != "" {
			details["strategy"] = infeasible.Strategy
		}
		if infeasible.Item != "" {
			details["item"] = infeasible.Item
		}
	case errors.As(err, &unknown):
		details["item"] = unknown.Item
	case errors.As(err, &under):
		details["slots"] = under.Slots.ToSlice()
		details["requested"] = under.Requested
	case errors.As(err, &limit):
		details["nodes"] = limit.Nodes
	}

	if debug && res != nil {
		if len(res.Candidates) > 0 {
			details["candidates"] = res.Candidates
		}
		if len(res.Narrowed) > 0 {
			details["narrowed"] = res.Narrowed
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
