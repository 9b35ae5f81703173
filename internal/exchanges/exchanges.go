package exchanges

import (
	"fmt"
	"net/http"

	"quotesnap/internal/aggregate"
	"quotesnap/internal/config"
	"quotesnap/internal/provider"
	"quotesnap/internal/provider/coinbase"
	"quotesnap/internal/provider/kraken"
	"quotesnap/internal/provider/ratelimit"
)

// Doer performs outbound requests for every exchange client. *httpx.Client
// satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Feeds builds one feed per enabled exchange, Coinbase first, each wrapped in
// the rate limiter its settings ask for.
func Feeds(cfg *config.Config, httpClient Doer) ([]aggregate.Feed, error) {
	header := http.Header{}
	if cfg.HTTP.UserAgent != "" {
		header.Set("User-Agent", cfg.HTTP.UserAgent)
	}

	var feeds []aggregate.Feed
	if cfg.Coinbase.Enabled {
		client, err := coinbase.NewAPIClient(
			coinbase.WithBaseURL(cfg.Coinbase.BaseURL),
			coinbase.WithHTTPClient(httpClient),
			coinbase.WithHeader(header),
		)
		if err != nil {
			return nil, fmt.Errorf("coinbase client: %w", err)
		}
		src := coinbase.NewSource(cfg.Coinbase.Name, client)
		feeds = append(feeds, feed(src, cfg.Coinbase))
	}
	if cfg.Kraken.Enabled {
		client, err := kraken.NewAPIClient(
			kraken.WithBaseURL(cfg.Kraken.BaseURL),
			kraken.WithHTTPClient(httpClient),
			kraken.WithHeader(header),
		)
		if err != nil {
			return nil, fmt.Errorf("kraken client: %w", err)
		}
		src := kraken.NewSource(cfg.Kraken.Name, client)
		feeds = append(feeds, feed(src, cfg.Kraken))
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("no exchange enabled")
	}
	return feeds, nil
}

func feed(src provider.Source, ex config.Exchange) aggregate.Feed {
	limited := ratelimit.Wrap(src, ex.MaxRequestsPerMinute, ex.Burst, ex.MinRequestInterval)
	return aggregate.Feed{Table: provider.NewTable(limited.Name()), Source: limited}
}
