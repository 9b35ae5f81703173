package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"quotesnap/internal/provider"
)

const maxBody = 256 << 10

// Ticker is the top of book for one pair.
type Ticker struct {
	// Pair is the key the API answered under, lower-cased (e.g. "xxbtzusd").
	Pair string
	// Ask is the lowest ask, the price a client buys at.
	Ask decimal.Decimal
	// Bid is the highest bid, the price a client sells at.
	Bid decimal.Decimal
}

// GetTicker retrieves the ticker for symbol quoted in fiat.
//
// The pair key under "result" is chosen by the API and differs from the
// requested spelling, so exactly one key must be present. Both sides are
// validated before either is returned.
func (c *APIClient) GetTicker(ctx context.Context, symbol provider.Symbol, fiat string) (Ticker, error) {
	query := url.Values{}
	query.Set("pair", string(symbol)+fiat)

	endpoint := fmt.Sprintf("%s/Ticker?%s", strings.TrimRight(c.baseURL, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return Ticker{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Ticker{}, fmt.Errorf("performing request: %w: %w", provider.ErrUnreachable, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusTooManyRequests:
		return Ticker{}, fmt.Errorf("rate limited: %w", provider.ErrUnreachable)

	default:
		return Ticker{}, fmt.Errorf("unexpected status code %d: %w", res.StatusCode, provider.ErrUnreachable)
	}

	var body map[string]any
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBody)).Decode(&body); err != nil {
		return Ticker{}, fmt.Errorf("decoding ticker response: %w: %w", provider.ErrBadResponse, err)
	}

	// {"error": ["EQuery:Unknown asset pair"], "result": {}}
	apiErrors, err := parseNullableValue[[]any](body, "error")
	if err != nil {
		return Ticker{}, fmt.Errorf("decoding error: %w: %w", provider.ErrBadResponse, err)
	}
	if apiErrors != nil && len(*apiErrors) > 0 {
		msgs := make([]string, 0, len(*apiErrors))
		for _, e := range *apiErrors {
			msgs = append(msgs, fmt.Sprint(e))
		}
		return Ticker{}, fmt.Errorf("api error %s: %w", strings.Join(msgs, "; "), provider.ErrBadResponse)
	}

	result, err := parseNullableValue[map[string]any](body, "result")
	if err != nil {
		return Ticker{}, fmt.Errorf("decoding result: %w: %w", provider.ErrBadResponse, err)
	}
	if result == nil {
		return Ticker{}, fmt.Errorf("missing result: %w", provider.ErrBadResponse)
	}
	if len(*result) != 1 {
		return Ticker{}, fmt.Errorf("expected one pair under result, got %d: %w", len(*result), provider.ErrBadResponse)
	}

	var (
		pairKey string
		pairVal any
	)
	for k, v := range *result {
		pairKey, pairVal = k, v
	}

	// {"a": ["50000.1", "1", "1.000"], "b": ["49999.9", "1", "1.000"], ...}
	pair, ok := pairVal.(map[string]any)
	if !ok {
		return Ticker{}, fmt.Errorf("decoding %s: unexpected type %T: %w", pairKey, pairVal, provider.ErrBadResponse)
	}

	ask, err := firstPrice(pair, "a")
	if err != nil {
		return Ticker{}, fmt.Errorf("decoding %s ask: %w: %w", pairKey, provider.ErrBadResponse, err)
	}
	bid, err := firstPrice(pair, "b")
	if err != nil {
		return Ticker{}, fmt.Errorf("decoding %s bid: %w: %w", pairKey, provider.ErrBadResponse, err)
	}

	return Ticker{Pair: strings.ToLower(pairKey), Ask: ask, Bid: bid}, nil
}

// firstPrice reads data[key][0] as a non-negative numeric string.
func firstPrice(data map[string]any, key string) (decimal.Decimal, error) {
	values, err := parseNullableValue[[]any](data, key)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if values == nil || len(*values) == 0 {
		return decimal.Decimal{}, fmt.Errorf("missing %q", key)
	}
	raw, ok := (*values)[0].(string)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unexpected type: %T", (*values)[0])
	}
	return provider.ParsePrice(raw)
}

// parseNullableValue is a helper function to parse a nullable value.
func parseNullableValue[T any](data map[string]any, key string) (*T, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	if v, ok := v.(T); ok {
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected type: %T", v)
}
