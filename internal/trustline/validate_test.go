package trustline

import (
	"errors"
	"testing"
)

func TestValidateCurrency(t *testing.T) {
	for _, good := range []string{"USD", "eur", "B2B", "524C555344000000000000000000000000000000"} {
		if err := validateCurrency(good); err != nil {
			t.Fatalf("validateCurrency(%q) failed: %v", good, err)
		}
	}
	for _, bad := range []string{"", "US", "USDC", "XRP", "xRp", "US$", "524C55", "ZZ-40-CHARS-BUT-NOT-HEX-ZZZZZZZZZZZZZZZZ"} {
		var verr *ValidationError
		if err := validateCurrency(bad); !errors.As(err, &verr) {
			t.Fatalf("validateCurrency(%q) = %v, want ValidationError", bad, err)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	if _, err := validateLimit("0"); err != nil {
		t.Fatalf("zero limit must validate: %v", err)
	}
	for _, bad := range []string{"-1", "nope", "100000000000000000"} {
		var verr *ValidationError
		if _, err := validateLimit(bad); !errors.As(err, &verr) || verr.Field != FieldLimit {
			t.Fatalf("validateLimit(%q) = %v, want limit ValidationError", bad, err)
		}
	}
}
