package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// Symbol is a traded currency quoted against Fiat.
type Symbol string

const (
	BTC Symbol = "BTC"
	ETH Symbol = "ETH"
)

// Fiat is the unit every quote is expressed in.
const Fiat = "USD"

// Symbols is the fixed enumeration swept every cycle. Order is the order
// symbols appear in the served document.
var Symbols = []Symbol{BTC, ETH}

// Action selects which side of the book a price belongs to.
type Action string

const (
	// Buy is what a client pays (lowest ask).
	Buy Action = "buy"
	// Sell is what a client receives (highest bid).
	Sell Action = "sell"
)

// Actions lists both sides in request order.
var Actions = []Action{Buy, Sell}

// Quote is the normalized buy/sell pair for one symbol at one exchange.
type Quote struct {
	Buy  decimal.Decimal
	Sell decimal.Decimal
}

// Update is a quote fragment returned by a Source. Nil fields were not
// fetched successfully and must not overwrite the stored value.
type Update struct {
	Buy  *decimal.Decimal
	Sell *decimal.Decimal
}

// Empty reports whether the update carries no values.
func (u Update) Empty() bool { return u.Buy == nil && u.Sell == nil }

// Source fetches one symbol's quote from an external API.
//
// Implementations return whatever fields they managed to parse together with
// an error describing the fields they could not. A non-nil error with a
// non-empty Update is a partial success.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol Symbol, fiat string) (Update, error)
}
