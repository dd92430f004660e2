package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/numreach/internal/version"
)

var (
	rootCmd = &cobra.Command{
		Use:   "numreach",
		Short: "Find arithmetic expressions that reach a target number",
		Long: `numreach combines a handful of numbers with arithmetic, powers, roots,
factorials and summations to hit a target. Run it as an HTTP/WebSocket
service with "serve" or solve a single puzzle with "solve".`,
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "",
		"Path to a config file (default: config/<ENV>.yaml)")

	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().Float64VarP(&solveTarget, "target", "t", 0, "Number to reach")
	solveCmd.Flags().IntVarP(&solveLevel, "level", "l", 0, "Difficulty level 0-3; higher levels unlock more operators")
	solveCmd.Flags().IntVar(&solveSteps, "steps", 0, "Bound each phase by expansions instead of wall time")
	solveCmd.Flags().IntVarP(&solveLimit, "max", "n", 10, "Show at most this many solutions (0 = all)")
	solveCmd.Flags().BoolVar(&solveJSON, "json", false, "Print the result as JSON")
	solveCmd.Flags().BoolVar(&solveLaTeX, "latex", false, "Print expressions as LaTeX")
	_ = solveCmd.MarkFlagRequired("target")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
