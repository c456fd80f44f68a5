package ledger

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	for _, good := range []string{"0", "1", "0.5", "1000000", "99999999999999"} {
		if _, err := ParseAmount(good); err != nil {
			t.Fatalf("ParseAmount(%q) failed: %v", good, err)
		}
	}

	cases := []struct {
		in   string
		want error
	}{
		{"abc", ErrAmountNotNumeric},
		{"", ErrAmountNotNumeric},
		{"-1", ErrAmountNegative},
		{"100000000000000000", ErrAmountRange},
		{"1.00000000000000001", ErrAmountRange},
	}
	for _, tc := range cases {
		_, err := ParseAmount(tc.in)
		if !errors.Is(err, tc.want) {
			t.Fatalf("ParseAmount(%q) = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestParseBalanceAllowsNegative(t *testing.T) {
	d, err := ParseBalance("-25.5")
	if err != nil {
		t.Fatalf("ParseBalance failed: %v", err)
	}
	if !d.IsNegative() {
		t.Fatal("expected negative balance")
	}
}

func TestDropsToXRP(t *testing.T) {
	if got := DropsToXRP(12_000_000); got.String() != "12" {
		t.Fatalf("12M drops = %s XRP", got)
	}
	if got := DropsToXRP(1); got.String() != "0.000001" {
		t.Fatalf("1 drop = %s XRP", got)
	}
}
