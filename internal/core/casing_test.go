package core

import "testing"

func TestToStorageForm(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"Credit Card", "credit-card"},
		{"credit card", "credit-card"},
		{"Bank   Transfer", "bank-transfer"},
		{"Salary", "salary"},
		{"Other-Income", "other-income"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToStorageForm(tc.in); got != tc.out {
			t.Fatalf("ToStorageForm(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestToDisplayForm(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"credit-card", "Credit Card"},
		{"salary", "Salary"},
		{"other-income", "Other Income"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToDisplayForm(tc.in); got != tc.out {
			t.Fatalf("ToDisplayForm(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestToProperCase(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"monthly pay", "Monthly Pay"},
		{"MONTHLY PAY", "Monthly Pay"},
		{"groceries", "Groceries"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToProperCase(tc.in); got != tc.out {
			t.Fatalf("ToProperCase(%q) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

// The storage/display transforms round-trip only for single-space Title
// Case input without internal hyphens. Hyphenated input collapses: both
// "Other Income" and "Other-Income" map to "other-income", which displays
// as "Other Income".
func TestCaseRoundTrip(t *testing.T) {
	for _, s := range []string{"Credit Card", "Cash", "Bank Transfer", "Digital Wallet"} {
		if got := ToDisplayForm(ToStorageForm(s)); got != s {
			t.Fatalf("round trip of %q = %q", s, got)
		}
	}
	if got := ToDisplayForm(ToStorageForm("Other-Income")); got != "Other-Income" {
		// documented lossy case: hyphen became a space
		if got != "Other Income" {
			t.Fatalf("hyphenated input: got %q", got)
		}
	}
}
