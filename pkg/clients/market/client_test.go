package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mamadbah2/biomethane/internal/config"
)

func TestPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"gas_price":1.12,"co2_price":52.5}`))
	}))
	defer srv.Close()

	c := NewClient(config.MarketConfig{FeedURL: srv.URL + "/", Token: "secret"})
	got, err := c.Prices(context.Background())
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if got.GasPrice != 1.12 || got.CO2Price != 52.5 {
		t.Fatalf("prices = %+v", got)
	}
}

func TestPricesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusServiceUnavailable, `{"message":"maintenance"}`, "code=503, message=maintenance"},
		{"missing price", http.StatusOK, `{"gas_price":1.1}`, "missing a price"},
		{"negative price", http.StatusOK, `{"gas_price":-1,"co2_price":40}`, "negative price"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(config.MarketConfig{FeedURL: srv.URL}).Prices(context.Background())
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}
