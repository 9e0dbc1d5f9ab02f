package rules

import "testing"

func TestExcessWeightFor(t *testing.T) {
	registry := New(Config{
		Thresholds: map[string]float64{"882": 30, "965": 10},
		Surcharges: map[string]float64{"965": 1.00},
	})

	cases := []struct {
		name     string
		code     string
		wantFree float64
		wantRate float64
	}{
		{name: "no entries uses defaults", code: "9999", wantFree: 15, wantRate: 5},
		{name: "threshold only keeps default rate", code: "882", wantFree: 30, wantRate: 5},
		{name: "threshold and surcharge", code: "965", wantFree: 10, wantRate: 1.00},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ew := registry.ExcessWeightFor(tc.code)
			if ew.FreeWeightKg != tc.wantFree || ew.PerKgSurcharge != tc.wantRate {
				t.Fatalf("got %+v", ew)
			}
		})
	}
}

func TestWhitelisted(t *testing.T) {
	registry := DefaultRegistry()

	name, ok := registry.Whitelisted("520")
	if !ok || name != "FACES" {
		t.Fatalf("got %q %v", name, ok)
	}
	if _, ok := registry.Whitelisted("9999"); ok {
		t.Fatal("9999 should not be whitelisted")
	}
}

func TestNeedsDetail(t *testing.T) {
	registry := DefaultRegistry()

	marwa := RecordView{CustomerCode: "565", ReferenceNumber: "AWB-1"}
	if !registry.NeedsDetail(marwa) {
		t.Fatal("marwa record with reference should need detail")
	}
	noRef := RecordView{CustomerCode: "565"}
	if registry.NeedsDetail(noRef) {
		t.Fatal("record without reference should not need detail")
	}
	other := RecordView{CustomerCode: "9999", ReferenceNumber: "AWB-2"}
	if registry.NeedsDetail(other) {
		t.Fatal("unrelated customer should not need detail")
	}
}

func TestNewAppliesDefaultRates(t *testing.T) {
	registry := New(Config{})
	ew := registry.ExcessWeightFor("any")
	if ew.FreeWeightKg != DefaultFreeWeightKg || ew.PerKgSurcharge != DefaultPerKgSurcharge {
		t.Fatalf("got %+v", ew)
	}
}
