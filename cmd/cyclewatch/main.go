package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"CycleWatch/internal/config"
	"CycleWatch/internal/fetch"
	"CycleWatch/internal/indicator"
	"CycleWatch/internal/store"
	"CycleWatch/internal/updater"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "cyclewatch",
	Short: "Personal crypto market-cycle top monitor",
	Long: `CycleWatch pulls public market, on-chain and macro series into a
local SQLite database, computes cycle-top indicators (Pi Cycle Top,
200WMA deviation, Stock-to-Flow deviation, Puell Multiple, ...) and
serves them with color-coded risk levels on a local dashboard.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Optional .env for API keys and overrides; absence is fine.
		_ = godotenv.Load()
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default configs/config.yaml)")
	rootCmd.AddCommand(serveCmd, fetchCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// app bundles the wired core components.
type app struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	updater *updater.Updater
	calc    *indicator.Calculator
}

func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open series store: %w", err)
	}

	fetchers := fetch.NewRegistry(cfg.DataSource.CoinGeckoBaseURL, cfg.DataSource.CoinGeckoAPIKey, cfg.Proxy)

	targets := make([]updater.Target, len(cfg.Metrics))
	for i, m := range cfg.Metrics {
		targets[i] = updater.Target{
			Metric:      m.Name,
			Source:      m.Source,
			SourceID:    m.ID,
			InitialDays: m.InitialDays,
		}
	}
	upd := updater.New(st, fetchers, targets, cfg.Updater.Parallelism)

	rules := make([]indicator.Rule, len(cfg.Indicators))
	for i, ind := range cfg.Indicators {
		rule, err := ind.Rule()
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
		rules[i] = indicator.Rule{Name: ind.Name, Thresholds: rule}
	}
	calc, err := indicator.NewCalculator(st, rules)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: st, updater: upd, calc: calc}, nil
}

func (a *app) overallThresholds() indicator.OverallThresholds {
	return indicator.OverallThresholds{
		RedHigh:   a.cfg.Overall.RedHigh,
		RedMedium: a.cfg.Overall.RedMedium,
		WarnSum:   a.cfg.Overall.WarnSum,
	}
}
