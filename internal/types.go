package internal

// ShipmentRecord is one parsed spreadsheet row: column name to raw cell text.
// Keys may carry a UTF-8 BOM artifact on the first column of an uploaded file.
type ShipmentRecord map[string]string

// Recognized column names. Anything else on a record passes through untouched.
const (
	ColCustomerCode              = "Customer Code"
	ColFreightCharge             = "Freight Charge"
	ColExcessWeightCharge        = "Excess Weight Charge"
	ColMonthlyOrderCharge        = "Monthly Order Charge"
	ColMonthlyExcessWeightCharge = "Monthly Excess Weight Charge"
	ColCODCharges                = "COD Charges"
	ColRTOCharge                 = "RTO Charge"
	ColInsuranceCharge           = "Insurance Charge"
	ColDiscountCharge            = "Discount Charge"
	ColVATCharge                 = "VAT Charge"
	ColCODAmount                 = "COD amount"
	ColStatus                    = "Status"
	ColChargeableWeight          = "Chargeable Weight"
	ColReferenceNumber           = "Reference Number"
	ColPackaging                 = "Inner/Outer"

	ColTotalFreight = "Total Freight"
	ColCODAfterCalc = "COD Amount After Calculation"
)

// Shipment statuses the engine cares about, compared case-insensitively.
const (
	StatusDelivered    = "delivered"
	StatusRTODelivered = "rto_delivered"
)

// ShipmentDetail is the per-shipment payload fetched from the invoicing API,
// resolved before the engine runs and consumed as an immutable snapshot.
type ShipmentDetail struct {
	ReferenceNumber    string
	DestinationHubCode string
	DestinationHubName string
}

// ChargeBreakdown holds the derived amounts for one record, post-override.
// TotalFreight is the sum of the nine charge fields; NetCOD subtracts it from
// the COD amount unless the customer is whitelisted.
type ChargeBreakdown struct {
	FreightCharge             float64
	ExcessWeightCharge        float64
	MonthlyOrderCharge        float64
	MonthlyExcessWeightCharge float64
	CODCharges                float64
	RTOCharge                 float64
	InsuranceCharge           float64
	DiscountCharge            float64
	VATCharge                 float64
	CODAmount                 float64

	TotalFreight  float64
	NetCOD        float64
	IsWhitelisted bool
}

// CustomerSummary is the per-customer rollup for one batch. Entries are kept
// in first-appearance order; the whitelist flag and client name are fixed when
// the first record for the code is seen.
type CustomerSummary struct {
	CustomerCode  string
	TotalNetCOD   float64
	IsWhitelisted bool
	ClientName    *string
}
