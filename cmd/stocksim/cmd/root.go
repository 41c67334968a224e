package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stocksim",
	Short: "A daily-bar stock backtesting engine",
	Long: `Stocksim is a daily-bar stock backtesting engine written in Go.

It provides tools for:
  - Matching orders against historical OHLC bars with limit and
    suspension handling
  - T+1 settlement with frozen/sellable position tracking
  - Commission schedules with minimum fees
  - Split and dividend adjustment from adjustment factors
  - Journaling fills and equity curves to CSV or SQLite

Complete documentation is available at https://github.com/rustyeddy/stocksim`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
