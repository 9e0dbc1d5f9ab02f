package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"codremit/internal"
	"codremit/internal/rules"
	"codremit/internal/util"
)

// DetailResolver supplies per-shipment detail for the reference numbers the
// override rules need. It is called at most once per run, before any record
// is computed; the engine never performs I/O itself. Missing entries in the
// returned map are fine and mean no override applies.
type DetailResolver interface {
	ResolveDetails(ctx context.Context, refs []string) (map[string]internal.ShipmentDetail, error)
}

// ProgressFunc receives advisory progress: a non-decreasing percentage in
// [0,100] and a short status message. It must not influence results.
type ProgressFunc func(percent float64, message string)

// RunnerOptions are the optional collaborators of a Runner.
type RunnerOptions struct {
	Resolver DetailResolver
	Progress ProgressFunc
	// ProgressEvery is the record interval between progress callbacks.
	// Zero means every 100 records.
	ProgressEvery int
}

// Runner walks one batch of shipment records through normalize → calculate →
// aggregate, producing the enriched output rows and per-customer summaries.
type Runner struct {
	registry *rules.Registry
	opts     RunnerOptions
}

// RunResult is the outcome of one batch.
type RunResult struct {
	// Records are the output rows, in input order, each a copy of the
	// original with the computed charge columns merged in.
	Records   []internal.ShipmentRecord
	Summaries []internal.CustomerSummary
	// CoercedFields counts non-blank numeric cells that were silently
	// zeroed during normalization. Diagnostic only.
	CoercedFields int
}

func NewRunner(registry *rules.Registry, opts RunnerOptions) *Runner {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 100
	}
	return &Runner{registry: registry, opts: opts}
}

// Run processes the batch. It fails only on structural problems: empty
// input, or a resolver error while prefetching shipment detail. Per-record
// data quality issues never fail the batch; a record without a usable
// customer code is grouped under the empty code.
func (r *Runner) Run(ctx context.Context, records []internal.ShipmentRecord) (RunResult, error) {
	if len(records) == 0 {
		return RunResult{}, errors.New("empty batch: no shipment records")
	}

	normalized := make([]NormalizedRecord, len(records))
	coerced := 0
	for i, record := range records {
		normalized[i] = NormalizeRecord(record)
		coerced += normalized[i].Coerced
	}

	details, err := r.resolveDetails(ctx, normalized)
	if err != nil {
		return RunResult{}, fmt.Errorf("resolve shipment details: %w", err)
	}

	r.report(0, fmt.Sprintf("processing %d shipments", len(records)))

	agg := NewAggregator()
	out := make([]internal.ShipmentRecord, 0, len(records))
	for i, rec := range normalized {
		breakdown := Calculate(rec, r.registry, details)

		clientName, whitelisted := r.registry.Whitelisted(rec.CustomerCode)
		var namePtr *string
		if whitelisted {
			namePtr = util.StringPtr(clientName)
		}
		agg.Add(rec.CustomerCode, breakdown.NetCOD, whitelisted, namePtr)

		out = append(out, mergeRecord(records[i], breakdown))

		if (i+1)%r.opts.ProgressEvery == 0 {
			percent := float64(i+1) / float64(len(records)) * 100
			r.report(percent, fmt.Sprintf("processed %d/%d shipments", i+1, len(records)))
		}
	}

	r.report(100, fmt.Sprintf("processed %d/%d shipments", len(records), len(records)))
	if coerced > 0 {
		log.Warnf("batch normalization zeroed %d unparseable numeric cells", coerced)
	}

	return RunResult{Records: out, Summaries: agg.Summaries(), CoercedFields: coerced}, nil
}

// resolveDetails prefetches shipment detail for every record some override
// rule wants to inspect. With no resolver configured the lookup is empty and
// detail-based overrides simply never fire.
func (r *Runner) resolveDetails(ctx context.Context, normalized []NormalizedRecord) (map[string]internal.ShipmentDetail, error) {
	if r.opts.Resolver == nil {
		return nil, nil
	}

	seen := map[string]struct{}{}
	refs := make([]string, 0)
	for _, rec := range normalized {
		if rec.ReferenceNumber == "" {
			continue
		}
		view := rules.RecordView{
			CustomerCode:     rec.CustomerCode,
			Status:           rec.Status,
			Packaging:        rec.Packaging,
			ReferenceNumber:  rec.ReferenceNumber,
			CODAmount:        rec.CODAmount,
			ChargeableWeight: rec.ChargeableWeight,
		}
		if !r.registry.NeedsDetail(view) {
			continue
		}
		if _, ok := seen[rec.ReferenceNumber]; ok {
			continue
		}
		seen[rec.ReferenceNumber] = struct{}{}
		refs = append(refs, rec.ReferenceNumber)
	}

	if len(refs) == 0 {
		return nil, nil
	}
	log.Infof("resolving detail for %d shipment references", len(refs))
	return r.opts.Resolver.ResolveDetails(ctx, refs)
}

func (r *Runner) report(percent float64, message string) {
	if r.opts.Progress != nil {
		r.opts.Progress(percent, message)
	}
}

// mergeRecord copies the original row and writes the computed columns onto
// it. Non-financial columns survive untouched so exported rows reconcile
// against the source document.
func mergeRecord(record internal.ShipmentRecord, b internal.ChargeBreakdown) internal.ShipmentRecord {
	out := make(internal.ShipmentRecord, len(record)+2)
	for k, v := range record {
		out[k] = v
	}
	util.SetField(out, internal.ColFreightCharge, formatAmount(b.FreightCharge))
	util.SetField(out, internal.ColExcessWeightCharge, formatAmount(b.ExcessWeightCharge))
	util.SetField(out, internal.ColCODCharges, formatAmount(b.CODCharges))
	util.SetField(out, internal.ColTotalFreight, formatAmount(b.TotalFreight))
	util.SetField(out, internal.ColCODAfterCalc, formatAmount(b.NetCOD))
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(util.Round2(v), 'f', 2, 64)
}
