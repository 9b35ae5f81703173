package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"quotesnap/internal/provider"
)

// ErrSerialization marks a document that could not be rendered. The cycle
// that produced it must not publish.
var ErrSerialization = errors.New("snapshot serialization defect")

// Price is a quote side rendered as a JSON number with the decimal's exact text.
type Price struct {
	Buy  json.Number `json:"buy"`
	Sell json.Number `json:"sell"`
}

// SymbolQuote is one symbol's entry inside an exchange.
type SymbolQuote struct {
	Symbol provider.Symbol
	Price  Price
}

// Exchange renders as {"name": ..., "<SYMBOL>": {"buy": n, "sell": n}, ...}
// with symbols in the order given.
type Exchange struct {
	Name   string
	Quotes []SymbolQuote
}

// Document is the served body: {"data": [exchange, ...]}.
type Document struct {
	Data []Exchange `json:"data"`
}

func (e Exchange) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	name, err := json.Marshal(e.Name)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"name":`)
	buf.Write(name)
	for _, q := range e.Quotes {
		if q.Symbol == "name" {
			return nil, fmt.Errorf("symbol collides with name key")
		}
		key, err := json.Marshal(string(q.Symbol))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(q.Price)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Exchange) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	nameRaw, ok := raw["name"]
	if !ok {
		return errors.New("missing name")
	}
	if err := json.Unmarshal(nameRaw, &e.Name); err != nil {
		return fmt.Errorf("decoding name: %w", err)
	}
	e.Quotes = e.Quotes[:0]
	for _, s := range provider.Symbols {
		v, ok := raw[string(s)]
		if !ok {
			continue
		}
		var p Price
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("decoding %s: %w", s, err)
		}
		e.Quotes = append(e.Quotes, SymbolQuote{Symbol: s, Price: p})
	}
	return nil
}

// FromTables copies the tables into an immutable document, exchanges in the
// order given and symbols in each table's enumeration order.
func FromTables(tables []*provider.Table) Document {
	doc := Document{Data: make([]Exchange, 0, len(tables))}
	for _, t := range tables {
		ex := Exchange{Name: t.Name(), Quotes: make([]SymbolQuote, 0, len(t.Symbols()))}
		for _, s := range t.Symbols() {
			q, _ := t.Get(s)
			ex.Quotes = append(ex.Quotes, SymbolQuote{
				Symbol: s,
				Price:  Price{Buy: json.Number(q.Buy.String()), Sell: json.Number(q.Sell.String())},
			})
		}
		doc.Data = append(doc.Data, ex)
	}
	return doc
}

// Build renders tables into the serialized document. Any failure wraps
// ErrSerialization.
func Build(tables []*provider.Table) ([]byte, error) {
	return Encode(FromTables(tables))
}

// Encode serializes doc. Any failure wraps ErrSerialization.
func Encode(doc Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return b, nil
}

// Parse decodes a served document, keeping prices as exact numbers.
func Parse(b []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return doc, nil
}
