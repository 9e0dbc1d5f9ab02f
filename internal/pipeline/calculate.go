package pipeline

import (
	"codremit/internal"
	"codremit/internal/rules"
)

// Calculate derives the charge breakdown for one normalized record. Pure:
// it consults only the registry and the pre-resolved detail lookup, performs
// no I/O and never fails. A missing detail entry means no hub override
// applies.
//
// Whitelisting affects the net-COD formula only; charge fields are still
// recomputed so the exported row shows the same derived columns for every
// customer.
func Calculate(rec NormalizedRecord, registry *rules.Registry, details map[string]internal.ShipmentDetail) internal.ChargeBreakdown {
	_, whitelisted := registry.Whitelisted(rec.CustomerCode)

	codAmount := rec.CODAmount
	if rec.Status == internal.StatusRTODelivered {
		// A returned-to-origin delivery never yields a cash collection.
		codAmount = 0
	}

	breakdown := internal.ChargeBreakdown{
		FreightCharge:             rec.FreightCharge,
		ExcessWeightCharge:        excessWeightCharge(rec, registry),
		MonthlyOrderCharge:        rec.MonthlyOrderCharge,
		MonthlyExcessWeightCharge: rec.MonthlyExcessWeightCharge,
		CODCharges:                rec.CODCharges,
		RTOCharge:                 rec.RTOCharge,
		InsuranceCharge:           rec.InsuranceCharge,
		DiscountCharge:            rec.DiscountCharge,
		VATCharge:                 rec.VATCharge,
		CODAmount:                 codAmount,
		IsWhitelisted:             whitelisted,
	}

	view := rules.RecordView{
		CustomerCode:     rec.CustomerCode,
		Status:           rec.Status,
		Packaging:        rec.Packaging,
		ReferenceNumber:  rec.ReferenceNumber,
		CODAmount:        codAmount,
		ChargeableWeight: rec.ChargeableWeight,
	}
	for _, override := range registry.Overrides() {
		if !override.Matches(view) {
			continue
		}
		var detail *internal.ShipmentDetail
		if override.NeedsDetail {
			if d, ok := details[rec.ReferenceNumber]; ok {
				detail = &d
			}
		}
		override.Apply(view, &breakdown, detail)
	}

	breakdown.TotalFreight = breakdown.FreightCharge +
		breakdown.ExcessWeightCharge +
		breakdown.MonthlyOrderCharge +
		breakdown.MonthlyExcessWeightCharge +
		breakdown.CODCharges +
		breakdown.RTOCharge +
		breakdown.InsuranceCharge +
		breakdown.DiscountCharge +
		breakdown.VATCharge

	if whitelisted {
		breakdown.NetCOD = breakdown.CODAmount
	} else {
		breakdown.NetCOD = breakdown.CODAmount - breakdown.TotalFreight
	}

	return breakdown
}

func excessWeightCharge(rec NormalizedRecord, registry *rules.Registry) float64 {
	ew := registry.ExcessWeightFor(rec.CustomerCode)
	if rec.ChargeableWeight <= ew.FreeWeightKg {
		return 0
	}
	return (rec.ChargeableWeight - ew.FreeWeightKg) * ew.PerKgSurcharge
}
