package storage

import (
	"path/filepath"
	"testing"
	"time"

	"codremit/internal"
	"codremit/internal/util"
)

func TestInsertAndListRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	summaries := []internal.CustomerSummary{
		{CustomerCode: "9999", TotalNetCOD: 130},
		{CustomerCode: "520", TotalNetCOD: 250, IsWhitelisted: true, ClientName: util.StringPtr("FACES")},
	}

	runID, err := db.InsertRun("trace-1", "file", 3, 1, 250*time.Millisecond, summaries)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs=%d", len(runs))
	}
	r := runs[0]
	if r.TraceID != "trace-1" || r.Source != "file" || r.Records != 3 || r.Customers != 2 || r.CoercedFields != 1 || r.DurationMs != 250 {
		t.Fatalf("run: %+v", r)
	}

	stored, err := db.RunSummaries(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("summaries=%d", len(stored))
	}
	if stored[0].CustomerCode != "9999" || stored[0].IsWhitelisted {
		t.Fatalf("summary 0: %+v", stored[0])
	}
	if stored[1].CustomerCode != "520" || !stored[1].IsWhitelisted || stored[1].ClientName == nil || *stored[1].ClientName != "FACES" {
		t.Fatalf("summary 1: %+v", stored[1])
	}
	if stored[1].TotalNetCOD != 250 {
		t.Fatalf("total=%v", stored[1].TotalNetCOD)
	}
}
