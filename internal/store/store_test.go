package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"preorder/internal/config"
	"preorder/internal/database"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		SupabaseURL:       "sqlite://" + filepath.Join(t.TempDir(), "test.db"),
		OfferTable:        "stoq_selling_plan_offers",
		VariantTable:      "stoq_selling_plan_variants",
		BatchOfferTable:   "stoq_selling_plan_offers_daily_batch",
		BatchVariantTable: "stoq_selling_plan_variants_daily_batch",
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := testConfig(t)
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, cfg)
}
