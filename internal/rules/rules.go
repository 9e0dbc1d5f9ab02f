package rules

import (
	"codremit/internal"
)

// Global excess-weight defaults, applied when a customer has no entry of its
// own in the threshold or surcharge tables.
const (
	DefaultFreeWeightKg   = 15.0
	DefaultPerKgSurcharge = 5.0
)

// RecordView is the slice of a normalized record the override rules may
// inspect. Amounts are the pre-override values.
type RecordView struct {
	CustomerCode     string
	Status           string
	Packaging        string
	ReferenceNumber  string
	CODAmount        float64
	ChargeableWeight float64
}

// Override is one customer-specific adjustment. Matches decides whether the
// rule applies to a record; Apply mutates the breakdown. Rules that key off
// fetched shipment detail set NeedsDetail so the orchestrator knows which
// reference numbers to resolve up front; Apply then receives the detail, or
// nil when the lookup missed (a miss means the rule leaves the record alone).
type Override struct {
	Name        string
	NeedsDetail bool
	Matches     func(RecordView) bool
	Apply       func(RecordView, *internal.ChargeBreakdown, *internal.ShipmentDetail)
}

// ExcessWeight is the resolved free allowance and per-kg rate for a customer.
type ExcessWeight struct {
	FreeWeightKg   float64
	PerKgSurcharge float64
}

// Registry is the immutable per-batch rule configuration: whitelist, excess
// weight tables and the ordered customer override rules. Construct one at
// startup and pass it explicitly; never mutate it during a run.
type Registry struct {
	whitelist  map[string]string
	thresholds map[string]float64
	surcharges map[string]float64
	overrides  []Override

	defaultFreeWeightKg   float64
	defaultPerKgSurcharge float64
}

// Config carries the raw tables for a Registry.
type Config struct {
	Whitelist  map[string]string
	Thresholds map[string]float64
	Surcharges map[string]float64
	Overrides  []Override

	// Zero values fall back to the package defaults.
	DefaultFreeWeightKg   float64
	DefaultPerKgSurcharge float64
}

func New(cfg Config) *Registry {
	r := &Registry{
		whitelist:             map[string]string{},
		thresholds:            map[string]float64{},
		surcharges:            map[string]float64{},
		overrides:             cfg.Overrides,
		defaultFreeWeightKg:   cfg.DefaultFreeWeightKg,
		defaultPerKgSurcharge: cfg.DefaultPerKgSurcharge,
	}
	for code, name := range cfg.Whitelist {
		r.whitelist[code] = name
	}
	for code, kg := range cfg.Thresholds {
		r.thresholds[code] = kg
	}
	for code, rate := range cfg.Surcharges {
		r.surcharges[code] = rate
	}
	if r.defaultFreeWeightKg <= 0 {
		r.defaultFreeWeightKg = DefaultFreeWeightKg
	}
	if r.defaultPerKgSurcharge <= 0 {
		r.defaultPerKgSurcharge = DefaultPerKgSurcharge
	}
	return r
}

// Whitelisted reports whether the customer is exempt from the net-COD
// subtraction, and its display name when it is.
func (r *Registry) Whitelisted(customerCode string) (string, bool) {
	name, ok := r.whitelist[customerCode]
	return name, ok
}

// ExcessWeightFor resolves the free allowance and surcharge rate for a
// customer. A customer with a threshold entry but no surcharge entry gets the
// customer threshold with the default rate.
func (r *Registry) ExcessWeightFor(customerCode string) ExcessWeight {
	out := ExcessWeight{
		FreeWeightKg:   r.defaultFreeWeightKg,
		PerKgSurcharge: r.defaultPerKgSurcharge,
	}
	if kg, ok := r.thresholds[customerCode]; ok {
		out.FreeWeightKg = kg
	}
	if rate, ok := r.surcharges[customerCode]; ok {
		out.PerKgSurcharge = rate
	}
	return out
}

// Overrides returns the ordered override rules.
func (r *Registry) Overrides() []Override {
	return r.overrides
}

// NeedsDetail reports whether any override rule would consult fetched
// shipment detail for this record.
func (r *Registry) NeedsDetail(view RecordView) bool {
	for _, o := range r.overrides {
		if o.NeedsDetail && o.Matches(view) {
			return true
		}
	}
	return false
}
