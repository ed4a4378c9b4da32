package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preorder/internal/config"
	"preorder/internal/database"
	"preorder/internal/logger"
	"preorder/internal/models"
	"preorder/internal/services/shopify"
	"preorder/internal/store"
)

type fakeShopify struct {
	associated   []string
	dissociated  []string
	checkedNodes int
}

func (f *fakeShopify) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shopify.GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case strings.Contains(req.Query, "nodes("):
			ids := req.Variables["ids"].([]interface{})
			f.checkedNodes += len(ids)
			nodes := make([]interface{}, len(ids))
			for i, id := range ids {
				nodes[i] = map[string]string{"__typename": "ProductVariant", "id": id.(string)}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{"nodes": nodes},
			})

		case strings.Contains(req.Query, "deliveryProfileUpdate"):
			profile := req.Variables["profile"].(map[string]interface{})
			if members, ok := profile["variantsToAssociate"].([]interface{}); ok {
				for _, m := range members {
					f.associated = append(f.associated, m.(string))
				}
			}
			if members, ok := profile["variantsToDissociate"].([]interface{}); ok {
				for _, m := range members {
					f.dissociated = append(f.dissociated, m.(string))
				}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"deliveryProfileUpdate": map[string]interface{}{
						"profile":    map[string]string{"id": "gid://shopify/DeliveryProfile/1"},
						"userErrors": []interface{}{},
					},
				},
			})

		default:
			// Profile membership query: the profile starts empty.
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"deliveryProfile": map[string]interface{}{
						"id": "gid://shopify/DeliveryProfile/1",
						"profileItems": map[string]interface{}{
							"edges":    []interface{}{},
							"pageInfo": map[string]bool{"hasNextPage": false},
						},
					},
				},
			})
		}
	}
}

type fakeStoq struct {
	created []string
	added   []int64
}

func (f *fakeStoq) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/":
			var envelope struct {
				SellingPlan struct {
					InternalName string `json:"internal_name"`
				} `json:"selling_plan"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
			f.created = append(f.created, envelope.SellingPlan.InternalName)
			json.NewEncoder(w).Encode(map[string]int64{"id": 101})

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/add_variant"):
			var payload struct {
				ShopifyVariantIDs []int64 `json:"shopify_variant_ids"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			f.added = append(f.added, payload.ShopifyVariantIDs...)
			w.WriteHeader(http.StatusOK)

		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/product_variants"):
			json.NewEncoder(w).Encode(map[string]interface{}{"product_variants": []interface{}{}})

		default:
			w.WriteHeader(http.StatusOK)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "sheet_a.csv"), []byte(""+
		"Container,16 Weeks,\n"+
		"display,,\n"+
		"sku1,45000000001,40\n"), 0o644))

	shopifyFake := &fakeShopify{}
	shopifySrv := httptest.NewServer(shopifyFake.handler(t))
	defer shopifySrv.Close()
	stoqFake := &fakeStoq{}
	stoqSrv := httptest.NewServer(stoqFake.handler(t))
	defer stoqSrv.Close()

	cfg := &config.Config{
		ShopifyEndpoint:          shopifySrv.URL,
		ShopifyAccessToken:       "shpat_test",
		ShopifyDeliveryProfileID: "1",
		StoqAPIBase:              stoqSrv.URL,
		StoqAPIAccessKey:         "stoq-key",
		SupabaseURL:              "sqlite://" + filepath.Join(t.TempDir(), "test.db"),
		OfferTable:               "stoq_selling_plan_offers",
		VariantTable:             "stoq_selling_plan_variants",
		BatchOfferTable:          "stoq_selling_plan_offers_daily_batch",
		BatchVariantTable:        "stoq_selling_plan_variants_daily_batch",
		SourceCSVDir:             sourceDir,
		TargetCSVDir:             targetDir,
		SourceFileNames:          []string{"sheet_a"},
		Suffixes:                 []string{"a"},
		LogLevel:                 "error",
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()
	st := store.New(db, cfg)

	p := New(cfg, st, logger.New(cfg.LogLevel))
	require.NoError(t, p.Run(context.Background(), "all", Options{}))

	// One row landed in each of the four tables.
	liveOffers, err := st.LiveOffers()
	require.NoError(t, err)
	require.Len(t, liveOffers, 1)
	offer := liveOffers[0]
	assert.Equal(t, "Preorder-16wks-40", offer.InternalName)
	assert.Equal(t, "112 days after checkout", offer.ShippingText)
	assert.Equal(t, 40, offer.DiscountAmount)
	require.NotNil(t, offer.StoqOfferID)
	assert.Equal(t, int64(101), *offer.StoqOfferID)
	require.NotNil(t, offer.Status)
	assert.Equal(t, models.StatusInsertCompleted, *offer.Status)

	batchOffers, err := st.BatchOffers()
	require.NoError(t, err)
	assert.Len(t, batchOffers, 1)

	batchIDs, err := st.AllBatchVariantIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"45000000001"}, batchIDs)

	liveIDs, err := st.LiveVariantIDsForOffer(offer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"45000000001"}, liveIDs)

	// The plan was created once and got its variant.
	assert.Equal(t, []string{"Preorder-16wks-40"}, stoqFake.created)
	assert.Equal(t, []int64{45000000001}, stoqFake.added)

	// The variant was confirmed on Shopify and associated with the profile.
	assert.Equal(t, 1, shopifyFake.checkedNodes)
	assert.Equal(t, []string{"gid://shopify/ProductVariant/45000000001"}, shopifyFake.associated)
	assert.Empty(t, shopifyFake.dissociated)

	// The variant check report was written alongside the target CSVs.
	_, err = os.Stat(filepath.Join(targetDir, "shopify_variant_check_report.csv"))
	assert.NoError(t, err)
}

func TestRunDryRun(t *testing.T) {
	cfg := &config.Config{
		SupabaseURL:       "sqlite://" + filepath.Join(t.TempDir(), "test.db"),
		OfferTable:        "stoq_selling_plan_offers",
		VariantTable:      "stoq_selling_plan_variants",
		BatchOfferTable:   "stoq_selling_plan_offers_daily_batch",
		BatchVariantTable: "stoq_selling_plan_variants_daily_batch",
		TargetCSVDir:      t.TempDir(),
		LogLevel:          "error",
	}
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	p := New(cfg, store.New(db, cfg), logger.New(cfg.LogLevel))
	require.NoError(t, p.Run(context.Background(), "all", Options{DryRun: true}))

	offers, err := store.New(db, cfg).BatchOffers()
	require.NoError(t, err)
	assert.Empty(t, offers)
}
