package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitrdm/slotfd/internal/config"
	"github.com/gitrdm/slotfd/internal/parallel"
	"github.com/gitrdm/slotfd/internal/puzzle"
	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// CompareOptions holds the flags of the compare command.
type CompareOptions struct {
	solverFlags
	Strategies []string
}

// strategyOutcome is one column of a comparison.
type strategyOutcome struct {
	Strategy string              `json:"strategy"`
	Status   string              `json:"status"` // "ok", "underconstrained" or "error"
	Slots    []int               `json:"slots,omitempty"`
	Narrowed []slotfd.ItemDomain `json:"narrowed,omitempty"`
	Error    *CLIError           `json:"error,omitempty"`
	Stats    *slotfd.SolverStats `json:"stats,omitempty"`

	cause error
}

// compareData is the payload of the compare command.
type compareData struct {
	Items      []string          `json:"items"`
	Strategies []strategyOutcome `json:"strategies"`

	universe int
}

// String renders the comparison as a table with one column per strategy.
func (d compareData) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)

	header := []string{"ITEM"}
	for _, s := range d.Strategies {
		header = append(header, strings.ToUpper(s.Strategy))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, item := range d.Items {
		row := []string{item}
		for _, s := range d.Strategies {
			row = append(row, d.cell(s, item))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	answer := []string{"= answer"}
	status := []string{"= status"}
	for _, s := range d.Strategies {
		if s.Error != nil {
			answer = append(answer, "-")
			status = append(status, s.Error.Code)
			continue
		}
		answer = append(answer, domainString(d.universe, s.Slots))
		status = append(status, s.Status)
	}
	fmt.Fprintln(w, strings.Join(answer, "\t"))
	fmt.Fprint(w, strings.Join(status, "\t"))
	_ = w.Flush()
	return b.String()
}

func (d compareData) cell(s strategyOutcome, item string) string {
	if s.Error != nil {
		return "-"
	}
	for _, nd := range s.Narrowed {
		if nd.Item == item {
			return domainString(d.universe, nd.Slots)
		}
	}
	return "-"
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [file]",
		Short: "Run every strategy on one puzzle and show the results side by side",
		Long: `Compare solves one puzzle with each propagation strategy and prints the
narrowed domains per item, the answer and the status of every strategy.

Underconstrained answers are reported as such instead of failing. The
command succeeds whenever the comparison could be produced; a strategy
that fails shows its error code in the status row.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, rootOpts, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringSliceVar(&opts.Strategies, "strategies", slotfd.StrategyNames(), "strategies to compare, in column order")

	return cmd
}

func runCompare(cmd *cobra.Command, rootOpts *RootOptions, opts *CompareOptions, args []string) error {
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
	for _, name := range opts.Strategies {
		if _, err := slotfd.NewStrategy(name, nil, nil, nil); err != nil {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: ErrCodeConfig, Err: err}
		}
	}
	cfg, sc, err := loadSettings(rootOpts, formatter, func(cfg *config.Config) {
		opts.apply(cmd, cfg)
	})
	if err != nil {
		return err
	}
	sc.AllowUnderconstrained = true

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	p, err := readProblem(cmd, path, format)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: ErrCodeInput, Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	outcomes, items, err := compareStrategies(ctx, rootOpts, opts.Strategies, sc, p, cfg.Workers)
	if err != nil {
		return err
	}

	// Ingestion fails the same way for every strategy.
	if allFailedWith(outcomes, ErrCodeMalformedGroup) {
		e := outcomes[0].Error
		_ = formatter.Error(e.Code, e.Message, e.Details)
		return &ExitError{Code: ExitFailure, Message: e.Code, Err: outcomes[0].cause}
	}

	return formatter.Success(compareData{Items: items, Strategies: outcomes, universe: p.Slots})
}

// compareStrategies runs p once per strategy on a worker pool.
func compareStrategies(ctx context.Context, rootOpts *RootOptions, names []string, base *slotfd.SolverConfig, p *slotfd.Problem, workers int) ([]strategyOutcome, []string, error) {
	if workers > len(names) {
		workers = len(names)
	}
	if workers < 1 {
		workers = 1
	}
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	outcomes := make([]strategyOutcome, len(names))
	stores := make([]*slotfd.Store, len(names))
	err := pool.Run(ctx, len(names), func(i int) {
		sc := *base
		sc.Strategy = names[i]
		solver := slotfd.NewSolverWithConfig(&sc)
		solver.SetLogger(rootOpts.logger())

		res, err := solver.Solve(ctx, p)
		out := strategyOutcome{Strategy: names[i]}
		if res != nil {
			stores[i] = res.Store
			if rootOpts.Verbose {
				stats := res.Stats
				out.Stats = &stats
			}
		}
		switch {
		case err != nil:
			code, _ := classify(err)
			out.Status = "error"
			out.cause = err
			out.Error = &CLIError{Code: code, Message: err.Error(), Details: errorDetails(err, nil, false)}
		default:
			out.Status = "ok"
			if res.Underconstrained {
				out.Status = "underconstrained"
			}
			out.Slots = res.Answer.Slots.ToSlice()
			out.Narrowed = res.Narrowed
		}
		outcomes[i] = out
	})
	if err != nil {
		return nil, nil, &ExitError{Code: ExitFailure, Message: ErrCodeGeneric, Err: err}
	}

	var items []string
	for _, s := range stores {
		if s != nil && s.Len() > 0 {
			items = s.Items()
			break
		}
	}
	return outcomes, items, nil
}

func allFailedWith(outcomes []strategyOutcome, code string) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, out := range outcomes {
		if out.Error == nil || out.Error.Code != code {
			return false
		}
	}
	return true
}
