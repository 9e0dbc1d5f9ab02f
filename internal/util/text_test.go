package util

import "testing"

func TestCleanCode(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"520", "520"},
		{" 520 ", "520"},
		{"\uFEFF520", "520"},
		{" \uFEFF520 ", "520"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanCode(tc.input); got != tc.want {
			t.Fatalf("CleanCode(%q)=%q want %q", tc.input, got, tc.want)
		}
	}
}

func TestFieldPrefersPlainKey(t *testing.T) {
	record := map[string]string{
		"Freight Charge":       "10",
		"\uFEFFCustomer Code":  "520",
		"\uFEFFFreight Charge": "99",
	}
	if got := Field(record, "Freight Charge"); got != "10" {
		t.Fatalf("got %q", got)
	}
	if got := Field(record, "Customer Code"); got != "520" {
		t.Fatalf("got %q", got)
	}
	if got := Field(record, "Status"); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSetFieldCollapsesBOMKey(t *testing.T) {
	record := map[string]string{"\uFEFFFreight Charge": "99"}
	SetField(record, "Freight Charge", "10.00")
	if len(record) != 1 {
		t.Fatalf("len=%d", len(record))
	}
	if record["Freight Charge"] != "10.00" {
		t.Fatalf("got %q", record["Freight Charge"])
	}
}
