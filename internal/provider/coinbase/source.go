package coinbase

import (
	"context"
	"errors"

	"quotesnap/internal/provider"
)

// Source adapts the per-action price API to provider.Source. Each
// (symbol, action) call fails on its own; a failed buy never blocks the sell.
type Source struct {
	name   string
	client *APIClient
}

var _ provider.Source = (*Source)(nil)

// NewSource returns a Source named name. An empty name defaults to "Coinbase".
func NewSource(name string, client *APIClient) *Source {
	if name == "" {
		name = "Coinbase"
	}
	return &Source{name: name, client: client}
}

func (s *Source) Name() string { return s.name }

// Fetch requests buy then sell for symbol and returns the fields that parsed.
func (s *Source) Fetch(ctx context.Context, symbol provider.Symbol, fiat string) (provider.Update, error) {
	var (
		update provider.Update
		errs   []error
	)
	for _, action := range provider.Actions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, provider.Unreachable(s.name, symbol, action, err))
			continue
		}
		price, err := s.client.GetPrice(ctx, symbol, fiat, action)
		if err != nil {
			errs = append(errs, provider.Classify(s.name, symbol, action, err))
			continue
		}
		switch action {
		case provider.Buy:
			update.Buy = &price
		case provider.Sell:
			update.Sell = &price
		}
	}
	return update, errors.Join(errs...)
}
