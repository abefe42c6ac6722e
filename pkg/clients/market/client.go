package market

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/biomethane/internal/config"
	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Client fetches the current sale prices.
type Client interface {
	Prices(ctx context.Context) (models.MarketAssumptions, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	feedURL    string
}

// NewClient builds a price feed client using the provided configuration values.
func NewClient(cfg config.MarketConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{httpClient: restyClient, feedURL: strings.TrimSuffix(cfg.FeedURL, "/")}
}

// PriceResponse mirrors the feed payload.
type PriceResponse struct {
	GasPrice *float64 `json:"gas_price"`
	CO2Price *float64 `json:"co2_price"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Prices implements Client.
func (c *APIClient) Prices(ctx context.Context) (models.MarketAssumptions, error) {
	result := new(PriceResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get(c.feedURL)
	if err != nil {
		return models.MarketAssumptions{}, fmt.Errorf("fetch market prices: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return models.MarketAssumptions{}, fmt.Errorf("market feed error: code=%d, message=%s", resp.StatusCode(), message)
	}

	if result.GasPrice == nil || result.CO2Price == nil {
		return models.MarketAssumptions{}, fmt.Errorf("market feed response is missing a price")
	}
	if *result.GasPrice < 0 || *result.CO2Price < 0 {
		return models.MarketAssumptions{}, fmt.Errorf("market feed returned a negative price")
	}

	return models.MarketAssumptions{GasPrice: *result.GasPrice, CO2Price: *result.CO2Price}, nil
}
