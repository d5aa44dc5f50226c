package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/flipledger/flipledger/internal/accounts"
)

// FileName is the config file created by `flipledger init`.
const FileName = "flipledger.yaml"

// EnvPrefix prefixes environment overrides, e.g. FLIPLEDGER_DATABASE_PATH.
const EnvPrefix = "FLIPLEDGER"

// Config represents the top-level flipledger.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business" mapstructure:"business"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Review   ReviewConfig   `yaml:"review" mapstructure:"review"`
	Matching MatchingConfig `yaml:"matching" mapstructure:"matching"`
	Posting  PostingConfig  `yaml:"posting" mapstructure:"posting"`

	// Dir is the directory the config was loaded from; relative paths resolve against it.
	Dir string `yaml:"-" mapstructure:"-"`
}

// BusinessConfig identifies the business.
type BusinessConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Type string `yaml:"type" mapstructure:"type"`
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ReviewConfig locates review-state files.
type ReviewConfig struct {
	SnapshotPath  string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
	CommitLogPath string `yaml:"commit_log_path" mapstructure:"commit_log_path"`
}

// MatchingConfig tunes the reconciliation matcher.
type MatchingConfig struct {
	ClearedLookbackDays int       `yaml:"cleared_lookback_days" mapstructure:"cleared_lookback_days"`
	PendingWindowDays   int       `yaml:"pending_window_days" mapstructure:"pending_window_days"`
	HistoryDays         int       `yaml:"history_days" mapstructure:"history_days"`
	HistoryLimit        int       `yaml:"history_limit" mapstructure:"history_limit"`
	DateToleranceDays   int       `yaml:"date_tolerance_days" mapstructure:"date_tolerance_days"`
	SuggestionThreshold float64   `yaml:"suggestion_threshold" mapstructure:"suggestion_threshold"`
	MagnitudeSimilarity float64   `yaml:"magnitude_similarity" mapstructure:"magnitude_similarity"`
	DuplicateWindowDays int       `yaml:"duplicate_window_days" mapstructure:"duplicate_window_days"`
	DuplicateThreshold  float64   `yaml:"duplicate_threshold" mapstructure:"duplicate_threshold"`
	Tip                 TipConfig `yaml:"tip" mapstructure:"tip"`
}

// TipConfig bounds the tip/surcharge heuristic. A difference qualifies when it
// falls within [MinAbs, MaxAbs] dollars or [MinPct, MaxPct] of the original.
type TipConfig struct {
	WindowDays int      `yaml:"window_days" mapstructure:"window_days"`
	MinAbs     float64  `yaml:"min_abs" mapstructure:"min_abs"`
	MaxAbs     float64  `yaml:"max_abs" mapstructure:"max_abs"`
	MinPct     float64  `yaml:"min_pct" mapstructure:"min_pct"`
	MaxPct     float64  `yaml:"max_pct" mapstructure:"max_pct"`
	Patterns   []string `yaml:"patterns" mapstructure:"patterns"`
}

// PostingConfig controls the posting archetypes.
type PostingConfig struct {
	BalanceTolerance    float64           `yaml:"balance_tolerance" mapstructure:"balance_tolerance"`
	SplitTolerance      float64           `yaml:"split_tolerance" mapstructure:"split_tolerance"`
	ClosingCostsAccount string            `yaml:"closing_costs_account" mapstructure:"closing_costs_account"`
	GainOnSaleAccount   string            `yaml:"gain_on_sale_account" mapstructure:"gain_on_sale_account"`
	InterestAccount     string            `yaml:"interest_account" mapstructure:"interest_account"`
	EscrowAccount       string            `yaml:"escrow_account" mapstructure:"escrow_account"`
	RehabAccounts       map[string]string `yaml:"rehab_accounts" mapstructure:"rehab_accounts"` // cost type -> account code
}

// DefaultTipPatterns match merchants where a tip is commonly added after authorization.
var DefaultTipPatterns = []string{
	`(?i)\b(diner|restaurant|cafe|caf[eé]|coffee|grill|bar|pub|tavern|pizza|pizzeria|bistro|kitchen|taqueria|sushi|bbq|brewing|brewery)\b`,
	`(?i)\b(tst\*|sq \*|toast)`,
	`(?i)\b(uber|lyft|taxi|cab)\b`,
	`(?i)\b(salon|barber|spa)\b`,
}

// RehabCostTypes lists the valid rehab cost-type codes.
var RehabCostTypes = []string{"L", "M", "S", "I", "H"}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, businessType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
			Type: businessType,
		},
		Database: DatabaseConfig{
			Path: "flipledger.db",
		},
		Review: ReviewConfig{
			SnapshotPath:  "review.db",
			CommitLogPath: "commit-log.csv",
		},
		Matching: MatchingConfig{
			ClearedLookbackDays: 60,
			PendingWindowDays:   120,
			HistoryDays:         365,
			HistoryLimit:        1000,
			DateToleranceDays:   3,
			SuggestionThreshold: 0.6,
			MagnitudeSimilarity: 0.7,
			DuplicateWindowDays: 5,
			DuplicateThreshold:  0.85,
			Tip: TipConfig{
				WindowDays: 3,
				MinAbs:     1,
				MaxAbs:     50,
				MinPct:     0.05,
				MaxPct:     0.50,
				Patterns:   append([]string(nil), DefaultTipPatterns...),
			},
		},
		Posting: PostingConfig{
			BalanceTolerance:    0.01,
			SplitTolerance:      0.02,
			ClosingCostsAccount: accounts.CodeClosingCosts,
			GainOnSaleAccount:   accounts.CodeGainOnSale,
			InterestAccount:     accounts.CodeInterest,
			EscrowAccount:       accounts.CodeEscrow,
			RehabAccounts: map[string]string{
				"L": accounts.CodeRehabLabor,
				"M": accounts.CodeRehabMaterials,
				"S": accounts.CodeRehabServices,
				"I": accounts.CodeRehabInspection,
				"H": accounts.CodeRehabHolding,
			},
		},
	}
}

// Load reads a flipledger.yaml file, applying defaults for missing keys and
// FLIPLEDGER_* environment overrides. A .env file next to the config is loaded
// first if present.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, Default("", "flip_and_contract"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Dir = dir
	cfg.Posting.RehabAccounts = upperKeys(cfg.Posting.RehabAccounts)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks ranges and required account codes.
func (c *Config) Validate() error {
	m := c.Matching
	for name, f := range map[string]float64{
		"matching.suggestion_threshold": m.SuggestionThreshold,
		"matching.magnitude_similarity": m.MagnitudeSimilarity,
		"matching.duplicate_threshold":  m.DuplicateThreshold,
	} {
		if f < 0 || f > 1 {
			return fmt.Errorf("config %s must be between 0 and 1, got %v", name, f)
		}
	}
	if m.Tip.MinAbs > m.Tip.MaxAbs || m.Tip.MinPct > m.Tip.MaxPct {
		return errors.New("config matching.tip: min bound exceeds max bound")
	}
	if c.Posting.BalanceTolerance < 0 || c.Posting.SplitTolerance < 0 {
		return errors.New("config posting tolerances must not be negative")
	}
	for _, ct := range RehabCostTypes {
		if c.Posting.RehabAccounts[ct] == "" {
			return fmt.Errorf("config posting.rehab_accounts missing cost type %s", ct)
		}
	}
	return nil
}

// Resolve returns p relative to the config directory unless it is absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// DatabasePath returns the resolved ledger database path.
func (c *Config) DatabasePath() string { return c.Resolve(c.Database.Path) }

// SnapshotPath returns the resolved review snapshot path.
func (c *Config) SnapshotPath() string { return c.Resolve(c.Review.SnapshotPath) }

// CommitLogPath returns the resolved commit log path.
func (c *Config) CommitLogPath() string { return c.Resolve(c.Review.CommitLogPath) }

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("business.name", d.Business.Name)
	v.SetDefault("business.type", d.Business.Type)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("review.snapshot_path", d.Review.SnapshotPath)
	v.SetDefault("review.commit_log_path", d.Review.CommitLogPath)

	m := d.Matching
	v.SetDefault("matching.cleared_lookback_days", m.ClearedLookbackDays)
	v.SetDefault("matching.pending_window_days", m.PendingWindowDays)
	v.SetDefault("matching.history_days", m.HistoryDays)
	v.SetDefault("matching.history_limit", m.HistoryLimit)
	v.SetDefault("matching.date_tolerance_days", m.DateToleranceDays)
	v.SetDefault("matching.suggestion_threshold", m.SuggestionThreshold)
	v.SetDefault("matching.magnitude_similarity", m.MagnitudeSimilarity)
	v.SetDefault("matching.duplicate_window_days", m.DuplicateWindowDays)
	v.SetDefault("matching.duplicate_threshold", m.DuplicateThreshold)
	v.SetDefault("matching.tip.window_days", m.Tip.WindowDays)
	v.SetDefault("matching.tip.min_abs", m.Tip.MinAbs)
	v.SetDefault("matching.tip.max_abs", m.Tip.MaxAbs)
	v.SetDefault("matching.tip.min_pct", m.Tip.MinPct)
	v.SetDefault("matching.tip.max_pct", m.Tip.MaxPct)
	v.SetDefault("matching.tip.patterns", m.Tip.Patterns)

	p := d.Posting
	v.SetDefault("posting.balance_tolerance", p.BalanceTolerance)
	v.SetDefault("posting.split_tolerance", p.SplitTolerance)
	v.SetDefault("posting.closing_costs_account", p.ClosingCostsAccount)
	v.SetDefault("posting.gain_on_sale_account", p.GainOnSaleAccount)
	v.SetDefault("posting.interest_account", p.InterestAccount)
	v.SetDefault("posting.escrow_account", p.EscrowAccount)
	v.SetDefault("posting.rehab_accounts", p.RehabAccounts)
}

// viper lowercases map keys; cost types are upper-case codes.
func upperKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}
