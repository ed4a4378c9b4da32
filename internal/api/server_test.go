package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preorder/internal/config"
	"preorder/internal/database"
	"preorder/internal/logger"
	"preorder/internal/models"
	"preorder/internal/store"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	cfg := &config.Config{
		SupabaseURL:       "sqlite://" + filepath.Join(t.TempDir(), "test.db"),
		OfferTable:        "stoq_selling_plan_offers",
		VariantTable:      "stoq_selling_plan_variants",
		BatchOfferTable:   "stoq_selling_plan_offers_daily_batch",
		BatchVariantTable: "stoq_selling_plan_variants_daily_batch",
		TargetCSVDir:      t.TempDir(),
		APIHost:           "127.0.0.1",
		APIPort:           "0",
		LogLevel:          "error",
	}
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(cfg, logger.New(cfg.LogLevel), db), store.New(db, cfg)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := testServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListOffers(t *testing.T) {
	s, st := testServer(t)

	status := models.StatusInsert
	require.NoError(t, st.InsertOffers([]models.Offer{
		{InternalName: "Preorder-16wks-40", ContainerName: "16wks-40", DiscountAmount: 40, Status: &status},
		{InternalName: "Preorder-100-CA-Seat-0902-30", ContainerName: "100-CA-Seat", DiscountAmount: 30},
	}))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/offers?status=insert", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.Offer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Preorder-16wks-40", resp.Data[0].InternalName)
}

func TestGetOfferNotFound(t *testing.T) {
	s, _ := testServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/offers/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSteps(t *testing.T) {
	s, _ := testServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/steps", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []struct {
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 12)
	assert.Equal(t, "build-csv", resp.Data[0].Name)
	assert.Equal(t, "sync-profile", resp.Data[11].Name)
}

func TestTriggerRunRejectsBadSelection(t *testing.T) {
	s, _ := testServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/runs", strings.NewReader(`{"selection":"99"}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerRunDry(t *testing.T) {
	s, _ := testServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/runs", strings.NewReader(`{"selection":"1","dry_run":true}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp["status"])
	assert.Equal(t, "1", resp["selection"])
}
