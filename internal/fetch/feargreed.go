package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"CycleWatch/internal/model"
)

const defaultFearGreedBaseURL = "https://api.alternative.me"

// FearGreedFetcher pulls the crypto Fear & Greed index history from
// alternative.me. The API returns the full history in one call, newest
// first, so incremental requests still fetch everything and rely on
// normalize to trim.
type FearGreedFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewFearGreedFetcher(proxyURL string) *FearGreedFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &FearGreedFetcher{
		BaseURL: defaultFearGreedBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *FearGreedFetcher) Name() string { return "feargreed" }

type fngResponse struct {
	Data []struct {
		Value     string `json:"value"`
		Timestamp string `json:"timestamp"`
	} `json:"data"`
	Metadata struct {
		Error any `json:"error"`
	} `json:"metadata"`
}

func (f *FearGreedFetcher) Fetch(ctx context.Context, req Request) ([]model.RawPoint, error) {
	endpoint := f.BaseURL + "/fng/?limit=0&format=json"
	httpReq, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}
	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var fng fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&fng); err != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric, Err: fmt.Errorf("decode: %w", err)}
	}
	if fng.Metadata.Error != nil {
		return nil, &FetchError{Source: f.Name(), Metric: req.Metric,
			Err: fmt.Errorf("api error: %v", fng.Metadata.Error)}
	}

	points := make([]model.RawPoint, 0, len(fng.Data))
	for _, entry := range fng.Data {
		ts, err := strconv.ParseInt(entry.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		val, err := strconv.ParseFloat(entry.Value, 64)
		if err != nil {
			continue
		}
		points = append(points, model.RawPoint{Date: model.DateOf(time.Unix(ts, 0)), Value: val})
	}
	return normalize(points, req.Since), nil
}
