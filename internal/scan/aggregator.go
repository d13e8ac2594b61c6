package scan

import (
	"fmt"
	"sort"
	"sync"
)

// SortKey names a sortable column of the result table.
type SortKey string

const (
	SortByCode           SortKey = "code"
	SortByName           SortKey = "name"
	SortByPrice          SortKey = "price"
	SortByChangePct      SortKey = "change_pct"
	SortByRiskRating     SortKey = "risk_rating"
	SortByResonanceCount SortKey = "resonance_count"
)

// Aggregator collects scan hits and serves sorted views. Sorting is stable
// and never recomputes ratings.
type Aggregator struct {
	mu      sync.Mutex
	results []*Result
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add appends one hit. Append-only; results are never removed or mutated.
func (a *Aggregator) Add(r *Result) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
}

// Len returns the number of collected hits.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}

// Results returns a snapshot of the current ordering.
func (a *Aggregator) Results() []*Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Result, len(a.results))
	copy(out, a.results)
	return out
}

// Sort reorders the collection by key. Ties keep their prior relative
// order, so repeated sorts compose predictably.
func (a *Aggregator) Sort(key SortKey, descending bool) error {
	less, err := lessFunc(key)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	sort.SliceStable(a.results, func(i, j int) bool {
		if descending {
			return less(a.results[j], a.results[i])
		}
		return less(a.results[i], a.results[j])
	})
	return nil
}

func lessFunc(key SortKey) (func(x, y *Result) bool, error) {
	switch key {
	case SortByCode:
		return func(x, y *Result) bool { return x.Instrument.Code < y.Instrument.Code }, nil
	case SortByName:
		return func(x, y *Result) bool { return x.Instrument.Name < y.Instrument.Name }, nil
	case SortByPrice:
		return func(x, y *Result) bool { return x.Instrument.Price < y.Instrument.Price }, nil
	case SortByChangePct:
		return func(x, y *Result) bool { return x.Instrument.ChangePct < y.Instrument.ChangePct }, nil
	case SortByRiskRating:
		return func(x, y *Result) bool { return x.RiskRating < y.RiskRating }, nil
	case SortByResonanceCount:
		return func(x, y *Result) bool { return x.ResonanceCount < y.ResonanceCount }, nil
	default:
		return nil, fmt.Errorf("unknown sort key: %q", key)
	}
}
