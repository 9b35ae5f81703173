package snapshot_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"quotesnap/internal/provider"
	"quotesnap/internal/snapshot"
)

func table(name string, btcBuy, btcSell, ethBuy, ethSell string) *provider.Table {
	t := provider.NewTable(name)
	set := func(s provider.Symbol, buy, sell string) {
		b := decimal.RequireFromString(buy)
		se := decimal.RequireFromString(sell)
		t.Apply(s, provider.Update{Buy: &b, Sell: &se})
	}
	set(provider.BTC, btcBuy, btcSell)
	set(provider.ETH, ethBuy, ethSell)
	return t
}

func TestBuild_Shape(t *testing.T) {
	t.Parallel()

	// Arrange
	tables := []*provider.Table{
		table("Coinbase", "50000.50", "49999.10", "3000.25", "2999.75"),
		table("Kraken", "50000.1", "49999.9", "3001", "2999"),
	}

	// Act
	b, err := snapshot.Build(tables)

	// Assert: exact bytes, names first and symbols in enumeration order
	require.NoError(t, err)
	require.Equal(t,
		`{"data":[`+
			`{"name":"Coinbase","BTC":{"buy":50000.5,"sell":49999.1},"ETH":{"buy":3000.25,"sell":2999.75}},`+
			`{"name":"Kraken","BTC":{"buy":50000.1,"sell":49999.9},"ETH":{"buy":3001,"sell":2999}}`+
			`]}`,
		string(b))
}

func TestBuild_ZeroTables(t *testing.T) {
	t.Parallel()

	b, err := snapshot.Build([]*provider.Table{provider.NewTable("Coinbase")})
	require.NoError(t, err)
	require.JSONEq(t, `{"data":[{"name":"Coinbase","BTC":{"buy":0,"sell":0},"ETH":{"buy":0,"sell":0}}]}`, string(b))
}

func TestBuild_RoundTripKeepsEveryField(t *testing.T) {
	t.Parallel()

	// Arrange
	tables := []*provider.Table{
		table("Coinbase", "1.1", "1.0", "2.2", "2.0"),
		table("Kraken", "3.3", "3.0", "4.4", "4.0"),
	}
	b, err := snapshot.Build(tables)
	require.NoError(t, err)

	// Act
	doc, err := snapshot.Parse(b)

	// Assert: every exchange carries the values it was built from
	require.NoError(t, err)
	require.Equal(t, snapshot.FromTables(tables), doc)
}

func TestBuild_ParsesAsPlainJSON(t *testing.T) {
	t.Parallel()

	b, err := snapshot.Build([]*provider.Table{table("Kraken", "50000.1", "49999.9", "1", "1")})
	require.NoError(t, err)

	var generic struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &generic))
	require.Len(t, generic.Data, 1)
	require.Equal(t, "Kraken", generic.Data[0]["name"])
	btc := generic.Data[0]["BTC"].(map[string]any)
	require.InEpsilon(t, 50000.1, btc["buy"].(float64), 1e-9)
}

func TestEncode_InvalidNumberIsSerializationDefect(t *testing.T) {
	t.Parallel()

	doc := snapshot.Document{Data: []snapshot.Exchange{{
		Name:   "Broken",
		Quotes: []snapshot.SymbolQuote{{Symbol: provider.BTC, Price: snapshot.Price{Buy: "NaN", Sell: "1"}}},
	}}}

	_, err := snapshot.Encode(doc)
	require.ErrorIs(t, err, snapshot.ErrSerialization)
}
