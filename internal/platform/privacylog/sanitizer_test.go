package privacylog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSecretsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("keystore exported",
		"seed", "sEdTM1uX8pu2do5XvTnutH6HsouMaM2",
		"export_password", "hunter22",
		"path", "/tmp/ks.json",
	)

	out := buf.String()
	if strings.Contains(out, "sEdTM1uX8pu2do5XvTnutH6HsouMaM2") || strings.Contains(out, "hunter22") {
		t.Fatalf("secret leaked into log: %s", out)
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected redaction marker: %s", out)
	}
	if !strings.Contains(out, "/tmp/ks.json") {
		t.Fatalf("neutral attr must pass through: %s", out)
	}
}

func TestAddressesAreFingerprinted(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("trustline created", "account", "rExampleAccount", "currency", "USD")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if _, plain := rec["account"]; plain {
		t.Fatal("account must not be logged in plaintext")
	}
	fp, ok := rec["account_fp"].(string)
	if !ok || !strings.HasPrefix(fp, "fp_") {
		t.Fatalf("expected fingerprinted account, got %v", rec["account_fp"])
	}
	if rec["currency"] != "USD" {
		t.Fatal("currency must pass through unchanged")
	}
}

func TestFingerprintStableWithinProcess(t *testing.T) {
	a := Fingerprint("rSomeAddress")
	b := Fingerprint("rSomeAddress")
	if a != b {
		t.Fatal("fingerprint must be stable for one boot")
	}
	if a == Fingerprint("rOtherAddress") {
		t.Fatal("different values must not collide trivially")
	}
	if Fingerprint("  ") != "" {
		t.Fatal("blank values produce no fingerprint")
	}
}
