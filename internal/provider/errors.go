package provider

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnreachable covers transport failures and non-2xx responses.
	ErrUnreachable = errors.New("unreachable")
	// ErrBadResponse covers bodies that arrived but could not be used.
	ErrBadResponse = errors.New("bad response")
)

// FetchError scopes a failure to one exchange, symbol and, for per-action
// sources, one action.
type FetchError struct {
	Kind     error
	Exchange string
	Symbol   Symbol
	Action   Action
	Err      error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(e.Exchange)
	b.WriteString(" ")
	b.WriteString(string(e.Symbol))
	if e.Action != "" {
		b.WriteString("/")
		b.WriteString(string(e.Action))
	}
	if e.Err == nil || !errors.Is(e.Err, e.Kind) {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the error kind so callers can use errors.Is(err, ErrBadResponse).
func (e *FetchError) Is(target error) bool { return target == e.Kind }

// Unreachable builds a transport-level FetchError.
func Unreachable(exchange string, symbol Symbol, action Action, err error) *FetchError {
	return &FetchError{Kind: ErrUnreachable, Exchange: exchange, Symbol: symbol, Action: action, Err: err}
}

// BadResponse builds a FetchError for an unusable body.
func BadResponse(exchange string, symbol Symbol, action Action, err error) *FetchError {
	return &FetchError{Kind: ErrBadResponse, Exchange: exchange, Symbol: symbol, Action: action, Err: err}
}

// Classify wraps a client error into a FetchError. Errors that do not carry
// ErrUnreachable are treated as bad responses.
func Classify(exchange string, symbol Symbol, action Action, err error) *FetchError {
	if errors.Is(err, ErrUnreachable) {
		return Unreachable(exchange, symbol, action, err)
	}
	return BadResponse(exchange, symbol, action, err)
}

// Kind returns "unreachable", "bad_response" or "unknown" for log fields.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return "unknown"
	}
}

// plainPrice is an unsigned decimal without exponent. The digit limits keep
// rendering a stored quote cheap.
var plainPrice = regexp.MustCompile(`^[0-9]{1,20}(\.[0-9]{1,18})?$`)

// ParsePrice parses a provider price string. Only plain non-negative decimals
// are accepted; signs, exponents and oversized values are rejected.
func ParsePrice(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "-") {
		return decimal.Decimal{}, fmt.Errorf("negative price %q", raw)
	}
	if !plainPrice.MatchString(trimmed) {
		return decimal.Decimal{}, fmt.Errorf("price %q is not a plain decimal", raw)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing price %q: %w", raw, err)
	}
	return d, nil
}
