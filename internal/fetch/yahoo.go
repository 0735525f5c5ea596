package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"CycleWatch/internal/model"
)

// YahooFetcher pulls daily closes for macro tickers (equity indices, gold,
// DXY, yields) from the Yahoo Finance public chart API. Request.ID is the
// Yahoo ticker; a symbol map covers the common aliases.
type YahooFetcher struct {
	Client    *http.Client
	SymbolMap map[string]string
}

func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX":   "^GSPC",
			"GOLD":  "GC=F",
			"DXY":   "DX-Y.NYB",
			"US10Y": "^TNX",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(id string) string {
	if mapped, ok := f.SymbolMap[id]; ok {
		return mapped
	}
	return id
}

// yahooChart is the response structure from the Yahoo chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []any `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// yahooRange maps a backfill depth in days to the coarse range strings the
// chart API accepts.
func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	case days <= 1825:
		return "5y"
	default:
		return "max"
	}
}

func (f *YahooFetcher) Fetch(ctx context.Context, req Request) ([]model.RawPoint, error) {
	days := req.InitialDays
	if !req.Since.IsZero() {
		days = int(time.Now().UTC().Sub(req.Since.Time()).Hours()/24) + 1
	}
	if days <= 0 {
		days = 365
	}

	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=%s",
		url.PathEscape(f.yahooSymbol(req.ID)), yahooRange(days))

	httpReq, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric,
			Err: fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body[:min(len(body), 256)]))}
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: fmt.Errorf("decode: %w", err)}
	}
	if chart.Chart.Error != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric,
			Err: fmt.Errorf("api error: %s", chart.Chart.Error.Description)}
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: fmt.Errorf("no data returned")}
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: fmt.Errorf("no quote data")}
	}
	quote := result.Indicators.Quote[0]

	points := make([]model.RawPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		// Null closes mark market holidays; skip them.
		c, ok := toFloat(quote.Close[i])
		if !ok || c == 0 {
			continue
		}
		points = append(points, model.RawPoint{Date: model.DateOf(time.Unix(ts, 0)), Value: c})
	}
	return normalize(points, req.Since), nil
}
