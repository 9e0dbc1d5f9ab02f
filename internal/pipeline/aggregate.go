package pipeline

import (
	"codremit/internal"
	"codremit/internal/util"
)

// Aggregator folds per-record net COD into per-customer running totals,
// keeping entries in first-appearance order. Totals accumulate unrounded;
// Summaries rounds once at the edge.
type Aggregator struct {
	byCode  map[string]int
	entries []internal.CustomerSummary
}

func NewAggregator() *Aggregator {
	return &Aggregator{byCode: map[string]int{}}
}

// Add records one shipment's contribution. The whitelist flag and client
// name are fixed by the first record seen for the customer code.
func (a *Aggregator) Add(customerCode string, netCOD float64, whitelisted bool, clientName *string) {
	idx, ok := a.byCode[customerCode]
	if !ok {
		a.byCode[customerCode] = len(a.entries)
		a.entries = append(a.entries, internal.CustomerSummary{
			CustomerCode:  customerCode,
			TotalNetCOD:   netCOD,
			IsWhitelisted: whitelisted,
			ClientName:    clientName,
		})
		return
	}
	a.entries[idx].TotalNetCOD += netCOD
}

// Summaries returns the per-customer totals in first-appearance order, with
// totals rounded for display.
func (a *Aggregator) Summaries() []internal.CustomerSummary {
	out := make([]internal.CustomerSummary, len(a.entries))
	copy(out, a.entries)
	for i := range out {
		out[i].TotalNetCOD = util.Round2(out[i].TotalNetCOD)
	}
	return out
}
