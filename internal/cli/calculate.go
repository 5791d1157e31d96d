package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/fibmeter/internal/config"
	"github.com/agbru/fibmeter/internal/fibonacci"
	"github.com/agbru/fibmeter/internal/ui"
)

// Selection is a calculator together with the name it is registered under.
type Selection struct {
	Algorithm  string
	Calculator fibonacci.Calculator
}

// GetCalculatorsToRun resolves cfg.Algo against factory. "all" selects every
// registered calculator in name order; an unknown name selects nothing.
func GetCalculatorsToRun(cfg config.AppConfig, factory fibonacci.CalculatorFactory) []Selection {
	names := []string{cfg.Algo}
	if cfg.Algo == config.AlgoAll {
		names = factory.List()
	}
	selected := make([]Selection, 0, len(names))
	for _, name := range names {
		if calc, err := factory.Get(name); err == nil {
			selected = append(selected, Selection{Algorithm: name, Calculator: calc})
		}
	}
	return selected
}

// PrintExecutionConfig prints the target index, the timeout and the runtime
// environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Calculating %sF(%d)%s with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), cfg.N, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode prints whether one algorithm runs or several are
// compared, and how.
func PrintExecutionMode(selected []Selection, parallel bool, out io.Writer) {
	var mode string
	switch {
	case len(selected) == 1:
		mode = fmt.Sprintf("Single calculation with the %s%s%s algorithm", ui.ColorGreen(), selected[0].Calculator.Name(), ui.ColorReset())
	case parallel:
		mode = fmt.Sprintf("Parallel comparison of %d algorithms", len(selected))
	default:
		mode = fmt.Sprintf("Sequential comparison of %d algorithms", len(selected))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
