package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Shopify Admin GraphQL
	ShopifyEndpoint          string
	ShopifyAccessToken       string
	ShopifyDeliveryProfileID string

	// Stoq preorder API
	StoqAPIBase      string
	StoqAPIAccessKey string

	// Database (Supabase Postgres in production, sqlite:// for development)
	SupabaseURL     string
	SupabaseAnonKey string

	// Tables
	OfferTable        string
	VariantTable      string
	BatchOfferTable   string
	BatchVariantTable string

	// CSV directories
	SourceCSVDir string
	TargetCSVDir string

	// Source sheets: file names and the suffix applied to generated CSVs,
	// matched by position
	SourceFileNames []string
	Suffixes        []string

	// Kafka (optional; sync events are skipped when unset)
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Environment
	Env      string
	LogLevel string
}

// Load reads .env and the process environment into a Config.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		ShopifyEndpoint:          getEnv("SHOPIFY_ENDPOINT", ""),
		ShopifyAccessToken:       getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyDeliveryProfileID: getEnv("SHOPIFY_DELIVERY_PROFILE_ID", ""),
		StoqAPIBase:              getEnv("STOQ_API_BASE", "https://app.stoqapp.com/api/v1/external/preorders"),
		StoqAPIAccessKey:         getEnv("STOQ_API_ACCESS_KEY", ""),
		SupabaseURL:              getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:          getEnv("SUPABASE_ANON_KEY", ""),
		OfferTable:               getEnv("PREORDER_OFFER_TABLE", "stoq_selling_plan_offers"),
		VariantTable:             getEnv("PREORDER_VARIANT_TABLE", "stoq_selling_plan_variants"),
		BatchOfferTable:          getEnv("PREORDER_BATCH_OFFER_TABLE", "stoq_selling_plan_offers_daily_batch"),
		BatchVariantTable:        getEnv("PREORDER_BATCH_VARIANT_TABLE", "stoq_selling_plan_variants_daily_batch"),
		SourceCSVDir:             getEnv("PREORDER_SOURCE_CSV", ""),
		TargetCSVDir:             getEnv("PREORDER_TARGET_CSV", ""),
		SourceFileNames:          getEnvAsList("SOURCE_FILE_NAME_LIST"),
		Suffixes:                 getEnvAsList("SUFFIX_LIST"),
		KafkaBrokers:             getEnv("KAFKA_BROKERS", ""),
		APIPort:                  getEnv("API_PORT", "8080"),
		APIHost:                  getEnv("API_HOST", "0.0.0.0"),
		Env:                      getEnv("ENV", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fails fast before any I/O when a required key is absent.
func (c *Config) Validate() error {
	required := map[string]string{
		"SHOPIFY_ENDPOINT":     c.ShopifyEndpoint,
		"SHOPIFY_ACCESS_TOKEN": c.ShopifyAccessToken,
		"STOQ_API_ACCESS_KEY":  c.StoqAPIAccessKey,
		"SUPABASE_URL":         c.SupabaseURL,
		"SUPABASE_ANON_KEY":    c.SupabaseAnonKey,
		"PREORDER_SOURCE_CSV":  c.SourceCSVDir,
		"PREORDER_TARGET_CSV":  c.TargetCSVDir,
	}

	var missing []string
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(c.SourceFileNames) == 0 {
		missing = append(missing, "SOURCE_FILE_NAME_LIST")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if len(c.Suffixes) != len(c.SourceFileNames) {
		return fmt.Errorf("SUFFIX_LIST has %d entries, SOURCE_FILE_NAME_LIST has %d", len(c.Suffixes), len(c.SourceFileNames))
	}

	return nil
}

// KafkaBrokerList splits KAFKA_BROKERS into addresses. An empty result means
// event publishing is disabled.
func (c *Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
