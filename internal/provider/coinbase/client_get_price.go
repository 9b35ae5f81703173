package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"quotesnap/internal/provider"
)

// maxBody caps how much of a price response is read.
const maxBody = 64 << 10

// PriceResponse is the body of a price call.
//
//	{"data": {"base": "BTC", "currency": "USD", "amount": "50000.50"}}
type PriceResponse struct {
	Data struct {
		Base     string `json:"base"`
		Currency string `json:"currency"`
		Amount   string `json:"amount"`
	} `json:"data"`
}

// GetPrice retrieves the buy or sell spot price of symbol in fiat.
//
// Transport failures and non-2xx statuses wrap provider.ErrUnreachable.
// Bodies that cannot be used wrap provider.ErrBadResponse.
func (c *APIClient) GetPrice(ctx context.Context, symbol provider.Symbol, fiat string, action provider.Action) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/%s-%s/%s", strings.TrimRight(c.baseURL, "/"), symbol, fiat, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("performing request: %w: %w", provider.ErrUnreachable, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return decimal.Decimal{}, fmt.Errorf("unknown pair %s-%s: %w", symbol, fiat, provider.ErrUnreachable)

	case http.StatusTooManyRequests:
		return decimal.Decimal{}, fmt.Errorf("rate limited: %w", provider.ErrUnreachable)

	default:
		return decimal.Decimal{}, fmt.Errorf("unexpected status code %d: %w", res.StatusCode, provider.ErrUnreachable)
	}

	var body PriceResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxBody)).Decode(&body); err != nil {
		return decimal.Decimal{}, fmt.Errorf("decoding price response: %w: %w", provider.ErrBadResponse, err)
	}
	if body.Data.Amount == "" {
		return decimal.Decimal{}, fmt.Errorf("missing amount: %w", provider.ErrBadResponse)
	}
	if body.Data.Base != "" && !strings.EqualFold(body.Data.Base, string(symbol)) {
		return decimal.Decimal{}, fmt.Errorf("base %q does not match %s: %w", body.Data.Base, symbol, provider.ErrBadResponse)
	}
	if body.Data.Currency != "" && !strings.EqualFold(body.Data.Currency, fiat) {
		return decimal.Decimal{}, fmt.Errorf("currency %q does not match %s: %w", body.Data.Currency, fiat, provider.ErrBadResponse)
	}

	amount, err := provider.ParsePrice(body.Data.Amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", provider.ErrBadResponse, err)
	}
	return amount, nil
}
