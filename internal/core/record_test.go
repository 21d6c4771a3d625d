package core

import "testing"

func TestValidateDate(t *testing.T) {
	cases := []struct {
		s  string
		ok bool
	}{
		{"2025-01-05", true},
		{"2025-12-31", true},
		{"2025-02-30", false},
		{"2025-13-01", false},
		{"2025-1-5", false},
		{"05/01/2025", false},
		{"", false},
	}
	for i, tc := range cases {
		err := ValidateDate(tc.s)
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.s, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.s)
		}
	}
}

func TestRecordMonth(t *testing.T) {
	r := Record{Date: "2025-01-05"}
	if got := r.Month(); got != "2025-01" {
		t.Fatalf("month = %q, want 2025-01", got)
	}
}

func TestRecordValidate(t *testing.T) {
	good := Record{
		Date:    "2025-01-05",
		Company: "Acme",
		Number:  "10",
		Amount:  Money{Cents: 10000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Zero amount and empty note are both allowed.
	free := good
	free.Amount = Money{}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}

	bads := []Record{
		{Date: "bad", Company: "a", Number: "1", Amount: Money{Cents: 1}},
		{Date: "2025-01-05", Company: "", Number: "1", Amount: Money{Cents: 1}},
		{Date: "2025-01-05", Company: "a", Number: "", Amount: Money{Cents: 1}},
		{Date: "2025-01-05", Company: "a", Number: "1", Amount: Money{Cents: -1}},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
