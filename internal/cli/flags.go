package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gitrdm/slotfd/internal/config"
	"github.com/gitrdm/slotfd/internal/puzzle"
	"github.com/gitrdm/slotfd/pkg/slotfd"
)

// solverFlags are the settings shared by solve and compare. A flag only
// overrides the configuration when it was set explicitly.
type solverFlags struct {
	residual              string
	queryMode             string
	order                 string
	hallMaxItems          int
	stepBudget            int64
	timeout               time.Duration
	allowUnderconstrained bool
	inputFormat           string
}

func (f *solverFlags) register(cmd *cobra.Command) {
	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&f.residual, "residual", defaults.Residual, "domain of unmentioned wanted items (global_minus_claimed|full_universe|none)")
	flags.StringVar(&f.queryMode, "query-mode", defaults.QueryMode, "treatment of wanted items without a domain (strict|lenient)")
	flags.StringVar(&f.order, "order", defaults.Order, "item order of exact enumeration (smallest-first|largest-first)")
	flags.IntVar(&f.hallMaxItems, "hall-max-items", defaults.HallMaxItems, "largest item count for the full hall-set search")
	flags.Int64Var(&f.stepBudget, "step-budget", defaults.StepBudget, "maximum search nodes of exact enumeration, 0 for no limit")
	flags.DurationVar(&f.timeout, "timeout", defaults.Timeout, "time limit per input, 0 for none")
	flags.BoolVar(&f.allowUnderconstrained, "allow-underconstrained", defaults.AllowUnderconstrained, "accept answers with more slots than wanted items")
	flags.StringVar(&f.inputFormat, "input-format", string(puzzle.FormatAuto), "input format (auto|text|yaml)")
}

func (f *solverFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("residual") {
		cfg.Residual = f.residual
	}
	if flags.Changed("query-mode") {
		cfg.QueryMode = f.queryMode
	}
	if flags.Changed("order") {
		cfg.Order = f.order
	}
	if flags.Changed("hall-max-items") {
		cfg.HallMaxItems = f.hallMaxItems
	}
	if flags.Changed("step-budget") {
		cfg.StepBudget = f.stepBudget
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if flags.Changed("allow-underconstrained") {
		cfg.AllowUnderconstrained = f.allowUnderconstrained
	}
}

// loadSettings resolves the configuration for a command. Errors are
// reported through formatter and returned as command errors.
func loadSettings(opts *RootOptions, formatter *OutputFormatter, override func(*config.Config)) (*config.Config, *slotfd.SolverConfig, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, nil, &ExitError{Code: ExitCommandError, Message: ErrCodeConfig, Err: err}
	}
	override(cfg)
	sc, err := cfg.ToSolverConfig()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, nil, &ExitError{Code: ExitCommandError, Message: ErrCodeConfig, Err: err}
	}
	return cfg, sc, nil
}

// readProblem loads one input; "-" reads the command's standard input.
func readProblem(cmd *cobra.Command, path string, format puzzle.Format) (*slotfd.Problem, error) {
	if path == "-" {
		return puzzle.Parse(cmd.InOrStdin(), format)
	}
	return puzzle.ParseFile(path, format)
}

// domainString renders a snapshot entry the way Domain.String does.
func domainString(slots int, values []int) string {
	return slotfd.NewBitSetDomainFromValues(slots, values).String()
}
