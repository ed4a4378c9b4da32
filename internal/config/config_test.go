package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SHOPIFY_ENDPOINT", "https://example.myshopify.com/admin/api/2024-07/graphql.json")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_test")
	t.Setenv("STOQ_API_ACCESS_KEY", "stoq-key")
	t.Setenv("SUPABASE_URL", "sqlite://test.db")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("PREORDER_SOURCE_CSV", "/tmp/source")
	t.Setenv("PREORDER_TARGET_CSV", "/tmp/target")
	t.Setenv("SOURCE_FILE_NAME_LIST", "sheet_a,sheet_b")
	t.Setenv("SUFFIX_LIST", "a,b")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"sheet_a", "sheet_b"}, cfg.SourceFileNames)
	assert.Equal(t, []string{"a", "b"}, cfg.Suffixes)
	assert.Equal(t, "stoq_selling_plan_offers", cfg.OfferTable)
	assert.Equal(t, "stoq_selling_plan_offers_daily_batch", cfg.BatchOfferTable)
	assert.Equal(t, "https://app.stoqapp.com/api/v1/external/preorders", cfg.StoqAPIBase)
}

func TestLoadMissingKeys(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "")
	t.Setenv("PREORDER_TARGET_CSV", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPIFY_ACCESS_TOKEN")
	assert.Contains(t, err.Error(), "PREORDER_TARGET_CSV")
}

func TestLoadSuffixMismatch(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SUFFIX_LIST", "a")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUFFIX_LIST")
}

func TestKafkaBrokerList(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.KafkaBrokerList())

	cfg.KafkaBrokers = "localhost:9092, broker2:9092"
	assert.Equal(t, []string{"localhost:9092", "broker2:9092"}, cfg.KafkaBrokerList())
}
