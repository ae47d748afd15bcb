// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/price-engine/internal/store"
	"github.com/pdiddy/price-engine/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := store.Open(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	fish := "FISH PRODUCTS"
	veg := "LOWLAND VEGETABLES"
	seed := func(name string, category *string, date string, price float64) {
		err := s.ExclusiveTx(ctx, func(tx *store.Tx) error {
			id, err := tx.UpsertCommodity(ctx, name, category, nil, "PHP/kg")
			if err != nil {
				return err
			}
			return tx.UpsertPrice(ctx, id, date, &price, "daily", date+".txt")
		})
		require.NoError(t, err)
	}
	seed("Bangus", &fish, "2026-02-07", 185.0)
	seed("Bangus", &fish, "2026-02-08", 186.0)
	seed("Tilapia", &fish, "2026-02-08", 145.0)
	seed("Tomato", &veg, "2026-02-08", 45.5)

	return New(s, types.ServerConfig{Addr: ":0"})
}

func getJSON(t *testing.T, srv *Server, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	code, body := getJSON(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestLatest(t *testing.T) {
	srv := newTestServer(t)
	code, body := getJSON(t, srv, "/api/latest")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2026-02-08", body["date"])
	assert.EqualValues(t, 3, body["count"])
}

func TestPricesByDate(t *testing.T) {
	srv := newTestServer(t)

	code, body := getJSON(t, srv, "/api/prices?date=2026-02-07")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = getJSON(t, srv, "/api/prices?date=2020-01-01")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.NotNil(t, body["prices"], "empty result must be a JSON array, not null")

	code, body = getJSON(t, srv, "/api/prices")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "date")
}

func TestCommodities(t *testing.T) {
	srv := newTestServer(t)
	code, body := getJSON(t, srv, "/api/commodities")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["count"])

	list, ok := body["commodities"].([]any)
	require.True(t, ok)
	first := list[0].(map[string]any)
	assert.Equal(t, "Bangus", first["name"])
	assert.EqualValues(t, 2, first["price_count"])
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t)

	code, body := getJSON(t, srv, "/api/history/Bangus")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["count"])
	history := body["history"].([]any)
	newest := history[0].(map[string]any)
	assert.Equal(t, "2026-02-08", newest["date"])

	code, body = getJSON(t, srv, "/api/history/Bangus?limit=1")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, _ = getJSON(t, srv, "/api/history/Bangus?limit=-1")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = getJSON(t, srv, "/api/history/Lapu-Lapu")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)

	// Matches name and category on the latest date by default.
	code, body := getJSON(t, srv, "/api/search?q=FISH")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["count"])

	code, body = getJSON(t, srv, "/api/search?q=Bangus&date=2026-02-07")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = getJSON(t, srv, "/api/search?q=Durian")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.NotNil(t, body["results"])

	code, _ = getJSON(t, srv, "/api/search")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStats(t *testing.T) {
	srv := newTestServer(t)
	code, body := getJSON(t, srv, "/api/stats")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["total_commodities"])
	assert.EqualValues(t, 4, body["total_prices"])
	assert.EqualValues(t, 2, body["total_dates"])
	assert.EqualValues(t, 2, body["total_categories"])
	assert.Equal(t, "2026-02-07", body["first_date"])
	assert.Equal(t, "2026-02-08", body["last_date"])
}
