package fetch

// NewRegistry wires every known source name to its adapter. The updater
// looks adapters up by the source name configured per metric.
func NewRegistry(coingeckoBaseURL, coingeckoAPIKey, proxyURL string) map[string]Fetcher {
	cg := NewCoinGeckoClient(coingeckoBaseURL, coingeckoAPIKey, proxyURL)
	fetchers := []Fetcher{
		&CoinGeckoPrices{cg},
		&CoinGeckoGlobal{cg},
		&CoinGeckoSupply{cg},
		NewFearGreedFetcher(proxyURL),
		NewYahooFetcher(proxyURL),
		&MockFetcher{},
	}
	registry := make(map[string]Fetcher, len(fetchers))
	for _, f := range fetchers {
		registry[f.Name()] = f
	}
	return registry
}
