package rules

import (
	"codremit/internal"
)

// Production whitelist: customers billed by separate arrangement. Presence
// exempts the customer from the net-COD subtraction only; charge fields are
// still recomputed.
var whitelistClients = map[string]string{
	"520":  "FACES",
	"704":  "LC WAIKIKI",
	"565":  "Marwa",
	"1244": "Marjane Mall",
	"1124": "Excellence",
	"882":  "KS TECHNOLOGY",
	"1702": "Mylerz",
	"1814": "KITEA.COM",
	"1831": "BAM MA",
	"1860": "GSM Al Maghrib",
	"1063": "Fulfillment Bridge",
	"2062": "IKEA MAROC",
	"2338": "Lecoinintime Maroc",
	"2394": "CITYMALL",
	"2083": "vapeindustry",
	"2403": "COIN DES PRIX",
	"965":  "EQUICK",
	"778":  "1MOMENT",
	"1109": "IMILE DELIVERY",
	"2923": "WWW.AMED.MA",
	"2970": "AUBRILLANT",
	"2989": "TIGHT AND SLEEK",
}

// Per-customer free weight allowances (kg). Customers absent here use the
// 15 kg default.
var weightThresholds = map[string]float64{
	"882": 30,
	"965": 10,
}

// Per-customer surcharge rates (per kg over the allowance). A customer with a
// threshold but no entry here pays the default 5/kg.
var weightSurcharges = map[string]float64{
	"965": 1.00,
}

// KS TECHNOLOGY packaging fees: fixed COD charge per delivered collected
// shipment, depending on the packaging class on the row.
const (
	ksTechCustomerCode = "882"
	ksTechInnerFee     = 7.00
	ksTechOuterFee     = 12.00
)

// Marwa shipments routed through the RAK hub carry a flat negotiated
// freight charge. The hub code comes from the fetched shipment detail.
const (
	marwaCustomerCode = "565"
	marwaRemoteHub    = "RAK_HUB"
	marwaHubFreight   = 40.00
)

// DefaultRegistry builds the production rule set. Tests construct their own
// Registry via New to substitute alternate tables.
func DefaultRegistry() *Registry {
	return New(Config{
		Whitelist:  whitelistClients,
		Thresholds: weightThresholds,
		Surcharges: weightSurcharges,
		Overrides:  defaultOverrides(),
	})
}

func defaultOverrides() []Override {
	return []Override{
		{
			Name: "ks-tech-packaging-cod-fee",
			Matches: func(v RecordView) bool {
				return v.CustomerCode == ksTechCustomerCode &&
					v.Status == internal.StatusDelivered &&
					v.CODAmount != 0
			},
			Apply: func(v RecordView, b *internal.ChargeBreakdown, _ *internal.ShipmentDetail) {
				switch v.Packaging {
				case "inner":
					b.CODCharges = ksTechInnerFee
				case "outer":
					b.CODCharges = ksTechOuterFee
				}
			},
		},
		{
			Name:        "marwa-hub-freight",
			NeedsDetail: true,
			Matches: func(v RecordView) bool {
				return v.CustomerCode == marwaCustomerCode && v.ReferenceNumber != ""
			},
			Apply: func(v RecordView, b *internal.ChargeBreakdown, detail *internal.ShipmentDetail) {
				if detail == nil {
					return
				}
				if detail.DestinationHubCode == marwaRemoteHub {
					b.FreightCharge = marwaHubFreight
				}
			},
		},
	}
}
