package aggregate

import "btcquotes/internal/provider"

// Quote is one provider's crypto amount for the requested fiat amount.
// An empty Amount means the provider has no quote.
type Quote struct {
	Provider provider.ID `json:"provider"`
	Amount   string      `json:"amount,omitempty"`
}

func (q Quote) Present() bool { return q.Amount != "" }

// Result holds one Quote per known provider.
type Result map[provider.ID]Quote

// NewResult returns a Result with every provider present as a key and no
// amounts filled in.
func NewResult() Result {
	r := make(Result, len(provider.All))
	for _, id := range provider.All {
		r[id] = Quote{Provider: id}
	}
	return r
}

// Clone copies r. A nil Result stays nil.
func (r Result) Clone() Result {
	if r == nil {
		return nil
	}
	out := make(Result, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Present counts quotes that carry an amount.
func (r Result) Present() int {
	n := 0
	for _, q := range r {
		if q.Present() {
			n++
		}
	}
	return n
}

// Rows lists the quotes in display order, placeholders included.
func (r Result) Rows() []Quote {
	out := make([]Quote, 0, len(provider.All))
	for _, id := range provider.All {
		q, ok := r[id]
		if !ok {
			q = Quote{Provider: id}
		}
		out = append(out, q)
	}
	return out
}
