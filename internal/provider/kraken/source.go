package kraken

import (
	"context"

	"quotesnap/internal/provider"
)

// Source adapts the ticker API to provider.Source. One call yields both
// sides, so a symbol either updates completely or not at all.
type Source struct {
	name   string
	client *APIClient
}

var _ provider.Source = (*Source)(nil)

// NewSource returns a Source named name. An empty name defaults to "Kraken".
func NewSource(name string, client *APIClient) *Source {
	if name == "" {
		name = "Kraken"
	}
	return &Source{name: name, client: client}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Fetch(ctx context.Context, symbol provider.Symbol, fiat string) (provider.Update, error) {
	ticker, err := s.client.GetTicker(ctx, symbol, fiat)
	if err != nil {
		return provider.Update{}, provider.Classify(s.name, symbol, "", err)
	}
	return provider.Update{Buy: &ticker.Ask, Sell: &ticker.Bid}, nil
}
