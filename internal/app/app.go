package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/agbru/fibmeter/internal/cli"
	"github.com/agbru/fibmeter/internal/config"
	apperrors "github.com/agbru/fibmeter/internal/errors"
	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/logging"
	"github.com/agbru/fibmeter/internal/orchestration"
	"github.com/agbru/fibmeter/internal/server"
	"github.com/agbru/fibmeter/internal/ui"
)

// Application is one fibmeter invocation.
type Application struct {
	Config    config.AppConfig
	Factory   fibonacci.CalculatorFactory
	ErrWriter io.Writer
	Logger    logging.Logger
}

// New parses args, whose first element is the program name, against the
// global calculator registry and sets up logging on errWriter.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := fibonacci.GlobalFactory()

	programName := "fibmeter"
	var cmdArgs []string
	if len(args) > 0 {
		programName, cmdArgs = args[0], args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
		Logger:    logging.Setup(errWriter, cfg.LogLevel, !cfg.JSONOutput),
	}, nil
}

// Run executes the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)
	if a.Config.ServerMode {
		return a.runServer()
	}
	return a.runCalculate(ctx, out)
}

func (a *Application) runServer() int {
	opts := []server.Option{}
	if a.Logger != nil {
		opts = append(opts, server.WithLogger(a.Logger))
	}
	srv := server.NewServer(a.Factory, a.Config, opts...)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	selected := cli.GetCalculatorsToRun(a.Config, a.Factory)
	if len(selected) == 0 {
		fmt.Fprintf(a.ErrWriter, "No calculator registered for %q\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	banner := !a.Config.JSONOutput && !a.Config.Quiet && !a.Config.Classic
	if banner {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(selected, a.Config.Parallel, out)
	}

	log.Debug().Uint64("n", a.Config.N).Str("algo", a.Config.Algo).Msg("starting calculation")
	results := orchestration.ExecuteCalculations(ctx, selected, a.Config, out)

	switch {
	case a.Config.JSONOutput:
		return a.printJSON(results, out)
	case a.Config.Classic:
		return a.printClassic(results, out)
	case a.Config.Quiet:
		return a.printQuiet(results, out)
	}
	return orchestration.AnalyzeComparisonResults(results, a.Config, a.outputConfig(), out)
}

func (a *Application) outputConfig() cli.OutputConfig {
	return cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		HexOutput:  a.Config.HexOutput,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
	}
}

// outcome is the exit code of a run that printed results without the
// comparison summary.
func (a *Application) outcome(results []orchestration.CalculationResult) int {
	if orchestration.Best(results) == nil {
		return apperrors.HandleCalculationError(orchestration.FirstError(results), 0, a.ErrWriter, ui.ColorProvider{})
	}
	if err := orchestration.CheckConsistency(results, a.Config.N); err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter, ui.ColorProvider{})
	}
	return apperrors.ExitSuccess
}

func (a *Application) printJSON(results []orchestration.CalculationResult, out io.Writer) int {
	output := make([]cli.JSONResult, len(results))
	for i, res := range results {
		output[i] = cli.NewJSONResult(a.Config.N, res.Algorithm, res.Name, res.Result, res.Report, a.Config.HexOutput, res.Err)
	}
	if err := cli.WriteJSON(out, output); err != nil {
		a.Logger.Error("writing JSON output", err)
		return apperrors.ExitErrorGeneric
	}
	return a.outcome(results)
}

// printClassic prints the choice, meter report and value of every
// successful calculation.
func (a *Application) printClassic(results []orchestration.CalculationResult, out io.Writer) int {
	for _, res := range results {
		if res.Err == nil {
			cli.DisplayClassicResult(out, res.Algorithm, res.Report, res.Result)
		}
	}
	return a.outcome(results)
}

func (a *Application) printQuiet(results []orchestration.CalculationResult, out io.Writer) int {
	code := a.outcome(results)
	if code != apperrors.ExitSuccess {
		return code
	}
	best := orchestration.Best(results)
	if err := cli.DisplayResultWithConfig(out, best.Result, a.Config.N, best.Report, best.Algorithm, a.outputConfig()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
