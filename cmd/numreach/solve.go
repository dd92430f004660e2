package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/numreach/internal/config"
	"github.com/kailas-cloud/numreach/internal/domain/puzzle"
	"github.com/kailas-cloud/numreach/internal/domain/request"
	logpkg "github.com/kailas-cloud/numreach/internal/logger"
	"github.com/kailas-cloud/numreach/internal/transport/wire"
	solveuc "github.com/kailas-cloud/numreach/internal/usecase/solve"
)

var (
	solveCmd = &cobra.Command{
		Use:   "solve [numbers...]",
		Short: "Solve a single puzzle locally",
		Long: `Searches for expressions over the given numbers that evaluate to --target.
Phase progress is written to stderr; the result goes to stdout.`,
		Example: `  numreach solve 2 3 7 --target 23
  numreach solve 4 --target 2 --level 1 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSolve,
	}
	solveTarget float64
	solveLevel  int
	solveSteps  int
	solveLimit  int
	solveJSON   bool
	solveLaTeX  bool
)

func runSolve(cmd *cobra.Command, args []string) error {
	numbers, err := parseNumbers(args)
	if err != nil {
		return err
	}
	req, err := request.New(numbers, solveTarget, solveLevel, 0)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger("cli")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var cfg config.Config
	cfg.ApplyDefaults()
	cfg.Solver.StepLimit = solveSteps

	svc := solveuc.New(buildEngine(cfg.Solver, logger), logger).WithMaxSolutions(solveLimit)
	out, err := svc.Solve(context.Background(), req, func(status string) {
		fmt.Fprintln(cmd.ErrOrStderr(), status)
	})
	if err != nil {
		return err
	}

	if solveJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(wire.NewSolveResponse(out))
	}
	writeText(cmd.OutOrStdout(), out, solveLaTeX)
	return nil
}

func parseNumbers(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeText(w io.Writer, out solveuc.Outcome, latex bool) {
	render := func(it puzzle.Item) string {
		if latex {
			return it.LaTeX()
		}
		return it.Expression()
	}

	res := out.Result
	if len(res.Solutions) > 0 {
		fmt.Fprintf(w, "Solutions (%d):\n", len(res.Solutions))
		for i, s := range res.Solutions {
			fmt.Fprintf(w, "%3d. %s = %s  [complexity %s]\n",
				i+1, render(s), puzzle.Rounded(s.Value()), puzzle.Rounded(s.Complexity()))
		}
		return
	}

	if res.Closest.IsSentinel() {
		fmt.Fprintln(w, "No solution found.")
		return
	}
	fmt.Fprintf(w, "No exact solution. Closest: %s = %s\n",
		render(res.Closest), puzzle.Rounded(res.Closest.Value()))
}
