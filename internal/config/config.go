package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"CycleWatch/internal/model"
)

// Metric declares one tracked series: its storage name, which fetch
// source serves it, the source-specific identifier, and how deep the
// first backfill goes.
type Metric struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	ID          string `yaml:"id"`
	InitialDays int    `yaml:"initial_days"`
}

// IndicatorRule declares one indicator's threshold bands. Boundaries are
// ascending; levels has one entry more than boundaries.
type IndicatorRule struct {
	Name       string    `yaml:"name"`
	Boundaries []float64 `yaml:"boundaries"`
	Levels     []string  `yaml:"levels"`
}

// Rule converts the YAML form into a validated model.ThresholdRule.
func (r IndicatorRule) Rule() (model.ThresholdRule, error) {
	rule := model.ThresholdRule{Boundaries: r.Boundaries}
	for _, lvl := range r.Levels {
		parsed, err := model.ParseRiskLevel(lvl)
		if err != nil {
			return model.ThresholdRule{}, err
		}
		rule.Levels = append(rule.Levels, parsed)
	}
	if err := rule.Validate(); err != nil {
		return model.ThresholdRule{}, err
	}
	return rule, nil
}

// Config holds all application configuration.
type Config struct {
	HTTP struct {
		Listen string `yaml:"listen"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	DataSource struct {
		CoinGeckoBaseURL string `yaml:"coingecko_base_url"`
		CoinGeckoAPIKey  string `yaml:"coingecko_api_key"`
	} `yaml:"data_source"`
	Updater struct {
		Parallelism int `yaml:"parallelism"`
	} `yaml:"updater"`
	Overall struct {
		RedHigh   int `yaml:"red_high"`
		RedMedium int `yaml:"red_medium"`
		WarnSum   int `yaml:"warn_sum"`
	} `yaml:"overall"`
	Metrics    []Metric        `yaml:"metrics"`
	Indicators []IndicatorRule `yaml:"indicators"`
	Proxy      string          `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine: the defaults describe a
// complete BTC cycle tracker.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.DataSource.CoinGeckoAPIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTP_LISTEN"); v != "" {
		cfg.HTTP.Listen = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	// Defaults
	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = ":8080"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/cyclewatch.db"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 1 * * *"
	}
	if cfg.Updater.Parallelism == 0 {
		cfg.Updater.Parallelism = 1
	}
	if cfg.Overall.RedHigh == 0 {
		cfg.Overall.RedHigh = 3
	}
	if cfg.Overall.RedMedium == 0 {
		cfg.Overall.RedMedium = 2
	}
	if cfg.Overall.WarnSum == 0 {
		cfg.Overall.WarnSum = 4
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = defaultMetrics()
	}
	if len(cfg.Indicators) == 0 {
		cfg.Indicators = defaultIndicators()
	}

	return cfg, nil
}

// defaultMetrics is the tracked set of the standard BTC cycle dashboard.
func defaultMetrics() []Metric {
	return []Metric{
		{Name: "btc_price", Source: "coingecko", ID: "bitcoin", InitialDays: 1600},
		{Name: "eth_price", Source: "coingecko", ID: "ethereum", InitialDays: 400},
		{Name: "fear_greed", Source: "feargreed"},
		{Name: "btc_dominance", Source: "coingecko_global", ID: "btc"},
		{Name: "btc_supply", Source: "coingecko_supply", ID: "bitcoin"},
		{Name: "spx_close", Source: "yahoo", ID: "SPX", InitialDays: 400},
		{Name: "gold_close", Source: "yahoo", ID: "GOLD", InitialDays: 400},
		{Name: "dxy_close", Source: "yahoo", ID: "DXY", InitialDays: 400},
		{Name: "us10y_close", Source: "yahoo", ID: "US10Y", InitialDays: 400},
	}
}

// defaultIndicators carries the historically informed risk bands:
// Pi Cycle approaches at 0.95 and triggers at 1.0; price over 2x/3x the
// 200WMA (deviation 1.0/2.0); price over 1.7x/2.5x the S2F model; Puell
// 1.8/3.0; Fear & Greed 65/80; dominance froth below 48/40 percent.
func defaultIndicators() []IndicatorRule {
	return []IndicatorRule{
		{Name: "pi_cycle_top", Boundaries: []float64{0.95, 1.0}, Levels: []string{"GREEN", "YELLOW", "RED"}},
		{Name: "wma200_deviation", Boundaries: []float64{1.0, 2.0}, Levels: []string{"GREEN", "YELLOW", "RED"}},
		{Name: "s2f_deviation", Boundaries: []float64{1.7, 2.5}, Levels: []string{"GREEN", "YELLOW", "RED"}},
		{Name: "puell_multiple", Boundaries: []float64{1.8, 3.0}, Levels: []string{"GREEN", "YELLOW", "RED"}},
		{Name: "fear_greed", Boundaries: []float64{65, 80}, Levels: []string{"GREEN", "YELLOW", "RED"}},
		{Name: "btc_dominance", Boundaries: []float64{40, 48}, Levels: []string{"RED", "YELLOW", "GREEN"}},
	}
}

// Validate checks structural soundness. Threshold shape errors surface
// here, at startup.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for _, m := range c.Metrics {
		if m.Name == "" {
			return fmt.Errorf("metric with empty name")
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate metric %q", m.Name)
		}
		seen[m.Name] = true
		if m.Source == "" {
			return fmt.Errorf("metric %q: source is required", m.Name)
		}
	}
	for _, ind := range c.Indicators {
		if ind.Name == "" {
			return fmt.Errorf("indicator with empty name")
		}
		if _, err := ind.Rule(); err != nil {
			return fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
	}
	if c.Updater.Parallelism < 1 {
		return fmt.Errorf("updater.parallelism must be >= 1")
	}
	return nil
}
