package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/fibmeter/internal/ui"
)

// setCustomUsage installs a colored usage text on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// The theme is not initialized yet when parsing fails.
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}
		out := fs.Output()

		fmt.Fprintf(out, "\n%sfibmeter%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Computes F(n) with an O(n) or an O(log n) algorithm and reports time and memory.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] [n] [choice]\n\n", t.Warning, t.Reset, fs.Name())
		fmt.Fprintf(out, "  choice 1 selects the linear algorithm, 2 the logarithmic one.\n\n")
		fmt.Fprintf(out, "%sFlags:%s\n", t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			sig := "-" + f.Name
			if name != "" {
				sig += " " + name
			}
			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, sig, t.Reset, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\nEvery flag can also be set with a %s* environment variable or in a TOML file (-config).\n\n", EnvPrefix)
	}
}
