package pipeline

import (
	"strings"

	"codremit/internal"
	"codremit/internal/util"
)

// NormalizedRecord is the typed view of one raw shipment row. Field coercion
// never fails: absent, blank and malformed numeric cells become 0. Coerced
// counts how many non-blank cells were silently zeroed, for diagnostics only.
type NormalizedRecord struct {
	CustomerCode     string
	Status           string
	Packaging        string
	ReferenceNumber  string
	ChargeableWeight float64
	CODAmount        float64

	FreightCharge             float64
	ExcessWeightCharge        float64
	MonthlyOrderCharge        float64
	MonthlyExcessWeightCharge float64
	CODCharges                float64
	RTOCharge                 float64
	InsuranceCharge           float64
	DiscountCharge            float64
	VATCharge                 float64

	Coerced int
}

// NormalizeRecord extracts and coerces the recognized fields of a raw record.
// No side effects, no errors.
func NormalizeRecord(record internal.ShipmentRecord) NormalizedRecord {
	out := NormalizedRecord{
		CustomerCode:    util.CleanCode(util.Field(record, internal.ColCustomerCode)),
		Status:          strings.ToLower(strings.TrimSpace(util.Field(record, internal.ColStatus))),
		Packaging:       strings.ToLower(strings.TrimSpace(util.Field(record, internal.ColPackaging))),
		ReferenceNumber: strings.TrimSpace(util.Field(record, internal.ColReferenceNumber)),
	}

	amount := func(col string) float64 {
		v, coerced := util.ParseAmount(util.Field(record, col))
		if coerced {
			out.Coerced++
		}
		return v
	}

	out.ChargeableWeight = amount(internal.ColChargeableWeight)
	out.CODAmount = amount(internal.ColCODAmount)
	out.FreightCharge = amount(internal.ColFreightCharge)
	out.ExcessWeightCharge = amount(internal.ColExcessWeightCharge)
	out.MonthlyOrderCharge = amount(internal.ColMonthlyOrderCharge)
	out.MonthlyExcessWeightCharge = amount(internal.ColMonthlyExcessWeightCharge)
	out.CODCharges = amount(internal.ColCODCharges)
	out.RTOCharge = amount(internal.ColRTOCharge)
	out.InsuranceCharge = amount(internal.ColInsuranceCharge)
	out.DiscountCharge = amount(internal.ColDiscountCharge)
	out.VATCharge = amount(internal.ColVATCharge)

	return out
}
