package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"CycleWatch/internal/model"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient is the shared HTTP client for all CoinGecko-backed
// adapters. The free tier is aggressively rate limited, so every call
// waits on a shared limiter (one request per 3s keeps well under the
// 10-30 req/min cap).
type CoinGeckoClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewCoinGeckoClient creates a client with optional API key and proxy.
func NewCoinGeckoClient(baseURL, apiKey, proxyURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = defaultCoinGeckoBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

func (c *CoinGeckoClient) get(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+endpoint, nil)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.APIKey)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CoinGeckoPrices fetches daily close prices for a coin via the
// market_chart/range endpoint. Request.ID is the CoinGecko coin id.
type CoinGeckoPrices struct {
	*CoinGeckoClient
}

func (f *CoinGeckoPrices) Name() string { return "coingecko" }

// chartResponse holds [ms_timestamp, value] pairs.
type chartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

func (f *CoinGeckoPrices) Fetch(ctx context.Context, req Request) ([]model.RawPoint, error) {
	to := time.Now().UTC()
	var from time.Time
	if req.Since.IsZero() {
		days := req.InitialDays
		if days <= 0 {
			days = 365
		}
		from = to.AddDate(0, 0, -days)
	} else {
		from = req.Since.Time()
	}
	if !from.Before(to) {
		return nil, nil
	}

	endpoint := fmt.Sprintf("/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		url.PathEscape(req.ID), from.Unix(), to.Unix())

	var chart chartResponse
	if err := f.get(ctx, endpoint, &chart); err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}

	points := make([]model.RawPoint, 0, len(chart.Prices))
	for _, pair := range chart.Prices {
		// Timestamps are in milliseconds; sub-daily samples collapse to
		// the last value per date in normalize.
		ts := time.UnixMilli(int64(pair[0]))
		points = append(points, model.RawPoint{Date: model.DateOf(ts), Value: pair[1]})
	}
	return normalize(points, req.Since), nil
}

// CoinGeckoGlobal fetches the current market dominance snapshot for a
// coin. History is not exposed upstream, so the series accretes one point
// per run. Request.ID is the market_cap_percentage key, e.g. "btc".
type CoinGeckoGlobal struct {
	*CoinGeckoClient
}

func (f *CoinGeckoGlobal) Name() string { return "coingecko_global" }

func (f *CoinGeckoGlobal) Fetch(ctx context.Context, req Request) ([]model.RawPoint, error) {
	var resp struct {
		Data struct {
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := f.get(ctx, "/global", &resp); err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}
	dom, ok := resp.Data.MarketCapPercentage[req.ID]
	if !ok {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric,
			Err: fmt.Errorf("no dominance entry for %q", req.ID)}
	}
	return normalize([]model.RawPoint{{Date: model.Today(), Value: dom}}, req.Since), nil
}

// CoinGeckoSupply fetches the current circulating supply snapshot for a
// coin. Request.ID is the CoinGecko coin id.
type CoinGeckoSupply struct {
	*CoinGeckoClient
}

func (f *CoinGeckoSupply) Name() string { return "coingecko_supply" }

func (f *CoinGeckoSupply) Fetch(ctx context.Context, req Request) ([]model.RawPoint, error) {
	endpoint := fmt.Sprintf("/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		url.PathEscape(req.ID))
	var resp struct {
		MarketData struct {
			CirculatingSupply float64 `json:"circulating_supply"`
		} `json:"market_data"`
	}
	if err := f.get(ctx, endpoint, &resp); err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}
	if resp.MarketData.CirculatingSupply == 0 {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric,
			Err: fmt.Errorf("no circulating supply for %q", req.ID)}
	}
	return normalize([]model.RawPoint{{Date: model.Today(), Value: resp.MarketData.CirculatingSupply}}, req.Since), nil
}
