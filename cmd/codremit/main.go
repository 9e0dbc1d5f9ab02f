package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"codremit/internal"
	"codremit/internal/config"
	"codremit/internal/invoicing"
	"codremit/internal/pipeline"
	"codremit/internal/rules"
	"codremit/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	registry := rules.DefaultRegistry()

	cmd := os.Args[1]
	switch cmd {
	case "process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input xlsx or csv file")
		output := fs.String("output", "", "output xlsx path (default under OUTPUT_DIR)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}

		batch, err := readInput(*input)
		must(err)

		resolver := maybeResolver(cfg)
		started := time.Now()
		result, err := runBatch(cfg, registry, resolver, batch.Records)
		must(err)

		outPath := outputPath(cfg, *output)
		must(pipeline.ExportWorkbook(batch.Headers, result.Records, result.Summaries, outPath))
		recordRun(db, "file", result, time.Since(started))
		printSummaries(result.Summaries)
		fmt.Printf("processed %d shipments, %d customers -> %s\n", len(result.Records), len(result.Summaries), outPath)
	case "fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		from := fs.String("from", "", "start date (YYYY-MM-DD)")
		to := fs.String("to", "", "end date (YYYY-MM-DD)")
		output := fs.String("output", "", "output xlsx path (default under OUTPUT_DIR)")
		_ = fs.Parse(os.Args[2:])

		fromDate, toDate, err := parseDateRange(*from, *to)
		must(err)

		client := invoicing.NewClient(cfg)
		ctx := context.Background()
		must(client.Login(ctx))

		records, err := client.FetchShipments(ctx, fromDate, toDate)
		must(err)
		if len(records) == 0 {
			must(fmt.Errorf("no shipments invoiced between %s and %s", *from, *to))
		}

		started := time.Now()
		result, err := runBatch(cfg, registry, client, records)
		must(err)

		outPath := outputPath(cfg, *output)
		must(pipeline.ExportWorkbook(fetchedHeaders(records), result.Records, result.Summaries, outPath))
		recordRun(db, "api", result, time.Since(started))
		printSummaries(result.Summaries)
		fmt.Printf("processed %d shipments, %d customers -> %s\n", len(result.Records), len(result.Summaries), outPath)
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs to list")
		_ = fs.Parse(os.Args[2:])

		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%d  %s  source=%s records=%d customers=%d coerced=%d %dms  %s\n",
				r.ID, r.TraceID, r.Source, r.Records, r.Customers, r.CoercedFields, r.DurationMs, r.CreatedAt)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func runBatch(cfg config.Config, registry *rules.Registry, resolver pipeline.DetailResolver, records []internal.ShipmentRecord) (pipeline.RunResult, error) {
	runner := pipeline.NewRunner(registry, pipeline.RunnerOptions{
		Resolver:      resolver,
		ProgressEvery: cfg.ProgressEvery,
		Progress: func(percent float64, message string) {
			log.Infof("[%3.0f%%] %s", percent, message)
		},
	})
	return runner.Run(context.Background(), records)
}

// maybeResolver wires the invoicing API as the detail resolver for uploaded
// files when credentials are configured. Without credentials hub-based
// overrides are skipped, which only means no override applies.
func maybeResolver(cfg config.Config) pipeline.DetailResolver {
	if cfg.InvoicingUsername == "" || cfg.InvoicingPassword == "" {
		log.Warn("invoicing credentials not set; hub freight overrides disabled")
		return nil
	}
	client := invoicing.NewClient(cfg)
	if err := client.Login(context.Background()); err != nil {
		log.Warnf("invoicing login failed; hub freight overrides disabled: %v", err)
		return nil
	}
	return client
}

func readInput(path string) (pipeline.Batch, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return pipeline.Batch{}, err
		}
		defer f.Close()
		return pipeline.ReadCSV(f)
	}
	return pipeline.ReadWorkbookFile(path)
}

// fetchedHeaders derives a stable header order for API-sourced batches:
// recognized billing columns first, remaining columns sorted.
func fetchedHeaders(records []internal.ShipmentRecord) []string {
	known := []string{
		internal.ColCustomerCode, internal.ColReferenceNumber, internal.ColStatus,
		internal.ColChargeableWeight, internal.ColPackaging, internal.ColCODAmount,
		internal.ColFreightCharge, internal.ColExcessWeightCharge,
		internal.ColMonthlyOrderCharge, internal.ColMonthlyExcessWeightCharge,
		internal.ColCODCharges, internal.ColRTOCharge, internal.ColInsuranceCharge,
		internal.ColDiscountCharge, internal.ColVATCharge,
	}
	seen := map[string]struct{}{}
	headers := make([]string, 0, len(known))
	for _, h := range known {
		if _, ok := records[0][h]; ok {
			headers = append(headers, h)
			seen[h] = struct{}{}
		}
	}
	extras := make([]string, 0)
	for k := range records[0] {
		if _, ok := seen[k]; !ok {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	return append(headers, extras...)
}

func recordRun(db *storage.DB, source string, result pipeline.RunResult, duration time.Duration) {
	_, err := db.InsertRun(traceID(), source, len(result.Records), result.CoercedFields, duration, result.Summaries)
	if err != nil {
		log.Warnf("record run: %v", err)
	}
}

func printSummaries(summaries []internal.CustomerSummary) {
	for _, s := range summaries {
		name := ""
		if s.ClientName != nil {
			name = " " + *s.ClientName
		}
		tag := ""
		if s.IsWhitelisted {
			tag = " (whitelisted)"
		}
		fmt.Printf("customer %s%s%s: net COD %.2f\n", s.CustomerCode, name, tag, s.TotalNetCOD)
	}
}

func parseDateRange(from, to string) (time.Time, time.Time, error) {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("--from and --to are required")
	}
	fromDate, err := time.Parse("2006-01-02", from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	toDate, err := time.Parse("2006-01-02", to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	// Include the whole end day.
	toDate = toDate.Add(24*time.Hour - time.Millisecond)
	if toDate.Before(fromDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
	}
	return fromDate, toDate, nil
}

func outputPath(cfg config.Config, flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	name := fmt.Sprintf("generated_invoices_%s.xlsx", time.Now().Format("2006-01-02"))
	return filepath.Join(cfg.OutputDir, name)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`codremit - COD remittance and freight billing

usage:
  codremit process --input <file.xlsx|file.csv> [--output out.xlsx]
  codremit fetch --from YYYY-MM-DD --to YYYY-MM-DD [--output out.xlsx]
  codremit runs [--limit N]`)
}
