package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/stocksim/alloc"
	"github.com/rustyeddy/stocksim/backtest"
	"github.com/rustyeddy/stocksim/config"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/ledger"
	"github.com/rustyeddy/stocksim/market"
	"github.com/rustyeddy/stocksim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run a backtest using settings from a configuration file.

The config file specifies the investment, the instrument codes, the
fee schedule, the data directory with per-code CSV bar files, and
where to journal fills and equity.

Example:
  stocksim run --config examples/configs/basic.yaml`,
	RunE: runRun,
}

var (
	runConfigPath   string
	runStrategyName string
	runVerbose      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVarP(&runStrategyName, "strategy", "s", "buy_and_hold", "strategy: buy_and_hold or noop")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "log every settled day")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("Running backtest with config: %s\n", runConfigPath)
	fmt.Printf("  Investment: %.2f\n", cfg.Account.Investment)
	fmt.Printf("  Codes: %s\n", strings.Join(cfg.Account.Codes, ", "))
	fmt.Printf("  Policy: %s, Strategy: %s\n", cfg.Policy.Name, runStrategyName)
	fmt.Printf("  Dates: %s .. %s\n", cfg.Market.Start, cfg.Market.End)
	fmt.Println()

	m, err := market.Load(cfg.Market.DataDir, cfg.Account.Codes,
		cfg.Market.Start, cfg.Market.End, cfg.Market.LimitPct)
	if err != nil {
		return fmt.Errorf("load market data: %w", err)
	}

	policy, err := alloc.ByName(cfg.Policy.Name)
	if err != nil {
		return err
	}

	var strat strategies.Strategy
	switch runStrategyName {
	case "buy_and_hold":
		strat = strategies.BuyAndHold{Codes: cfg.Account.Codes}
	case "noop":
		strat = strategies.Noop{}
	default:
		return fmt.Errorf("unknown strategy: %s", runStrategyName)
	}

	var jnl journal.Journal
	switch cfg.Journal.Type {
	case "csv":
		jnl, err = journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	case "sqlite":
		jnl, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		jnl = journal.Nop{}
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jnl.Close()

	log := zap.NewNop()
	if runVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	r := &backtest.Runner{
		Market:     m,
		Policy:     policy,
		Strategy:   strat,
		Journal:    jnl,
		Investment: cfg.Account.Investment,
		LedgerOptions: []ledger.Option{
			ledger.WithFees(cfg.Fees.Schedule()),
			ledger.WithRoundLot(cfg.Fees.RoundLot),
			ledger.WithLogger(log),
		},
		Log: log,
	}

	res, err := r.Run(context.Background())
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	if sq, ok := jnl.(*journal.SQLite); ok {
		err = sq.RecordRun(journal.RunRecord{
			RunID:      res.RunID,
			Policy:     cfg.Policy.Name,
			Strategy:   strat.Name(),
			Codes:      strings.Join(cfg.Account.Codes, ","),
			Investment: cfg.Account.Investment,
			Start:      res.Start,
			End:        res.End,
			FinalValue: res.FinalValue,
		})
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	fmt.Printf("Results for run %s:\n", res.RunID)
	fmt.Printf("  Days: %d (%s .. %s)\n", res.DayCount, res.Start, res.End)
	fmt.Printf("  Fills: %d\n", res.Fills)
	fmt.Printf("  Final Value: %.6f\n", res.FinalValue)
	fmt.Printf("  Total Return: %.2f%%\n", res.TotalReturn*100)
	fmt.Printf("  Max Drawdown: %.2f%%\n", res.MaxDrawdown*100)
	if cfg.Journal.Type == "csv" {
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	} else if cfg.Journal.Type == "sqlite" {
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.DBPath)
	}

	return nil
}
