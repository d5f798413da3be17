package core

import "testing"

func TestParseDecimalToMillis(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1000, true},
		{"1.0", 1000, true},
		{"1.23", 1230, true},
		{"1,23", 1230, true},
		{"0.001", 1, true},
		{"12.345", 12345, true},
		{"1.0005", 1001, true}, // half-up rounding
		{"1.0004", 1000, true},
		{" 2.50 ", 2500, true},
		{"1000", 1000000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToMillis(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatMillis(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{1000, "1"},
		{1230, "1.23"},
		{12345, "12.345"},
		{1, "0.001"},
		{0, "0"},
		{-1500, "-1.5"},
		{1000000, "1000"},
	}
	for _, tc := range cases {
		if got := FormatMillis(tc.in); got != tc.out {
			t.Fatalf("FormatMillis(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Millis: 49990}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "49.99" {
		t.Fatalf("marshal = %s, want 49.99", data)
	}
	var back Money
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if back.Millis != m.Millis {
		t.Fatalf("round trip lost precision: %d != %d", back.Millis, m.Millis)
	}

	var quoted Money
	if err := quoted.UnmarshalJSON([]byte(`"12.345"`)); err != nil {
		t.Fatal(err)
	}
	if quoted.Millis != 12345 {
		t.Fatalf("quoted amount = %d, want 12345", quoted.Millis)
	}
}
