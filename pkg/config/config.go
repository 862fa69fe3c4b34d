package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PostingAccounts holds the account codes the bill-to-ledger translator books
// against. DefaultExpenseCode may be empty, in which case every bill item must
// carry its own expense account mapping.
type PostingAccounts struct {
	DefaultExpenseCode string
	VATInputCode       string
	PayableCode        string
}

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	RateLimit     string // ulule/limiter format, e.g. "100-M"

	Posting PostingAccounts
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("DEFAULT_EXPENSE_ACCOUNT", "")
	viper.SetDefault("VAT_INPUT_ACCOUNT", "1360")
	viper.SetDefault("ACCOUNTS_PAYABLE_ACCOUNT", "2000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.Posting = PostingAccounts{
		DefaultExpenseCode: viper.GetString("DEFAULT_EXPENSE_ACCOUNT"),
		VATInputCode:       viper.GetString("VAT_INPUT_ACCOUNT"),
		PayableCode:        viper.GetString("ACCOUNTS_PAYABLE_ACCOUNT"),
	}
	if cfg.Posting.VATInputCode == "" {
		return nil, fmt.Errorf("VAT_INPUT_ACCOUNT must not be empty")
	}
	if cfg.Posting.PayableCode == "" {
		return nil, fmt.Errorf("ACCOUNTS_PAYABLE_ACCOUNT must not be empty")
	}
	if cfg.Posting.DefaultExpenseCode == "" {
		slog.Warn("DEFAULT_EXPENSE_ACCOUNT not set, bill items without an expense account mapping will fail approval")
	}

	return cfg, nil
}
