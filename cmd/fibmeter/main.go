// Command fibmeter computes Fibonacci numbers with a linear and a logarithmic
// algorithm and reports the time and memory each one used.
//
// Usage:
//
//	fibmeter [flags] [n] [choice]
//
// where choice is 1 for the O(n) sweep and 2 for O(log n) matrix
// exponentiation. Run with -server to expose the calculators over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/fibmeter/internal/app"
	"github.com/agbru/fibmeter/internal/config"
	apperrors "github.com/agbru/fibmeter/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if config.IsHelp(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		fmt.Fprintf(os.Stderr, "fibmeter: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
