package mt5bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Alias1177/CandlePredictor/models"
)

func testClient(url string) *Client {
	return NewClient(ClientOptions{
		BaseURL:         url,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
		RetryInterval:   time.Millisecond,
	})
}

func TestGetCandles(t *testing.T) {
	var got ratesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_rates", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{
			"symbol": "EURUSD",
			"timeframe": "H1",
			"count": 2,
			"data": [
				{"time": "Mon, 01 Jan 2024 00:00:00 GMT", "open": 1.1, "high": 1.2, "low": 1.0, "close": 1.15, "tick_volume": 340, "spread": 1, "real_volume": 0},
				{"time": 1704070800, "open": 1.15, "high": 1.25, "low": 1.1, "close": 1.2, "tick_volume": 410, "spread": 1, "real_volume": 0}
			]
		}`))
	}))
	defer srv.Close()

	candles, err := testClient(srv.URL).GetCandles(context.Background(), "EURUSD", "1h", 50000)
	require.NoError(t, err)

	assert.Equal(t, ratesRequest{Symbol: "EURUSD", Timeframe: "H1", Count: MaxCount}, got)
	require.Len(t, candles, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), candles[0].Time)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), candles[1].Time)
	assert.Equal(t, 340.0, candles[0].Volume)
	assert.Equal(t, 1.2, candles[1].Close)
}

func TestGetCandlesErrors(t *testing.T) {
	_, err := testClient("http://127.0.0.1:1").GetCandles(context.Background(), "EURUSD", "2h", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported interval")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"EURUSD","data":[]}`))
	}))
	defer srv.Close()

	_, err = testClient(srv.URL).GetCandles(context.Background(), "EURUSD", "M5", 10)
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestBridgeErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid timeframe: H2"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GetCandles(context.Background(), "EURUSD", "H1", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid timeframe")
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","mt5_connected":true}`))
	}))
	defer srv.Close()

	ok, err := testClient(srv.URL).Healthy(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		err  bool
	}{
		{`"Tue, 02 Jan 2024 10:00:00 GMT"`, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), false},
		{`"2024-01-02T10:00:00"`, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), false},
		{`"2024-01-02T10:00:00Z"`, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), false},
		{`1704189600`, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), false},
		{`"soon"`, time.Time{}, true},
		{`null`, time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := parseTime(gjson.Parse(tt.raw))
		if tt.err {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.raw, got)
	}
}
