package provider

// Table holds one exchange's quotes for every symbol in Symbols.
// It is owned by a single goroutine and is not safe for concurrent use.
type Table struct {
	name    string
	symbols []Symbol
	quotes  map[Symbol]Quote
}

// NewTable returns a table for the given exchange with every symbol at zero.
func NewTable(name string) *Table {
	t := &Table{
		name:    name,
		symbols: append([]Symbol(nil), Symbols...),
		quotes:  make(map[Symbol]Quote, len(Symbols)),
	}
	for _, s := range t.symbols {
		t.quotes[s] = Quote{}
	}
	return t
}

func (t *Table) Name() string { return t.name }

// Symbols returns the table's keys in enumeration order.
func (t *Table) Symbols() []Symbol { return t.symbols }

// Get returns the current quote for symbol. ok is false for symbols outside
// the table's fixed key set.
func (t *Table) Get(symbol Symbol) (Quote, bool) {
	q, ok := t.quotes[symbol]
	return q, ok
}

// Apply writes the non-nil fields of u into symbol's quote. Unknown symbols
// are ignored so the key set never changes shape.
func (t *Table) Apply(symbol Symbol, u Update) bool {
	q, ok := t.quotes[symbol]
	if !ok {
		return false
	}
	if u.Buy != nil {
		q.Buy = *u.Buy
	}
	if u.Sell != nil {
		q.Sell = *u.Sell
	}
	t.quotes[symbol] = q
	return true
}
