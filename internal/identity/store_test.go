package identity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "store-passphrase", "testnet", slog.Default())
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	return s
}

func TestGenerateThenReimportSameAddress(t *testing.T) {
	s := newTestStore(t)
	info, secret, err := s.Generate(Options{Name: "hot wallet"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if info.Address == "" || info.ID == "" {
		t.Fatalf("incomplete public record: %+v", info)
	}
	if secret.Seed == "" || secret.Mnemonic == "" {
		t.Fatal("secret must carry both encodings")
	}

	other := newTestStore(t)
	fromSeed, _, err := other.Import(secret.Seed, Options{})
	if err != nil {
		t.Fatalf("import from seed failed: %v", err)
	}
	if fromSeed.Address != info.Address {
		t.Fatalf("seed import derived %s, want %s", fromSeed.Address, info.Address)
	}

	third := newTestStore(t)
	fromMnemonic, _, err := third.Import(secret.Mnemonic, Options{})
	if err != nil {
		t.Fatalf("import from mnemonic failed: %v", err)
	}
	if fromMnemonic.Address != info.Address {
		t.Fatalf("mnemonic import derived %s, want %s", fromMnemonic.Address, info.Address)
	}
}

func TestImportDuplicateRejected(t *testing.T) {
	s := newTestStore(t)
	_, secret, err := s.Generate(Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, _, err := s.Import(secret.Seed, Options{}); !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestImportRejectsUnknownEncoding(t *testing.T) {
	s := newTestStore(t)
	for _, bad := range []string{"", "zzz", "hello world this is not a mnemonic at all ok then", "rNotASeed"} {
		if _, _, err := s.Import(bad, Options{}); !errors.Is(err, ErrInvalidSecret) {
			t.Fatalf("Import(%q) = %v, want ErrInvalidSecret", bad, err)
		}
	}
}

func TestExportKeystoreWeakPassword(t *testing.T) {
	s := newTestStore(t)
	info, _, err := s.Generate(Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "ks.json")
	if _, err := s.ExportKeystore(info.ID, "short", path); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("no file may be written on weak password")
	}
}

func TestKeystoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	info, _, err := s.Generate(Options{Name: "cold"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	path, err := s.ExportKeystore(info.ID, "long enough password", "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	other := newTestStore(t)
	restored, err := other.ImportFromKeystore(path, "long enough password")
	if err != nil {
		t.Fatalf("import from keystore failed: %v", err)
	}
	if restored.Address != info.Address {
		t.Fatalf("restored %s, want %s", restored.Address, info.Address)
	}
	if restored.Metadata.Name != "cold" {
		t.Fatalf("metadata lost: %+v", restored.Metadata)
	}
}

func TestKeystoreWrongPassword(t *testing.T) {
	s := newTestStore(t)
	info, _, err := s.Generate(Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	path, err := s.ExportKeystore(info.ID, "long enough password", "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	other := newTestStore(t)
	if _, err := other.ImportFromKeystore(path, "not the password"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestKeystoreAddressTamperDetected(t *testing.T) {
	s := newTestStore(t)
	info, _, err := s.Generate(Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	path, err := s.ExportKeystore(info.ID, "long enough password", "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read keystore: %v", err)
	}
	var file KeystoreFile
	if err := json.Unmarshal(raw, &file); err != nil {
		t.Fatalf("unmarshal keystore: %v", err)
	}
	file.Address = "rrrrrrrrrrrrrrrrrrrrrhoLvTp"
	tampered, _ := json.Marshal(file)
	if err := os.WriteFile(path, tampered, 0o600); err != nil {
		t.Fatalf("rewrite keystore: %v", err)
	}

	other := newTestStore(t)
	if _, err := other.ImportFromKeystore(path, "long enough password"); !errors.Is(err, ErrKeystoreIntegrity) {
		t.Fatalf("expected ErrKeystoreIntegrity, got %v", err)
	}
}

func TestSigningHandle(t *testing.T) {
	s := newTestStore(t)
	info, _, err := s.Generate(Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	handle, err := s.SigningHandle(info.ID)
	if err != nil {
		t.Fatalf("signing handle failed: %v", err)
	}
	if handle.Address() != info.Address {
		t.Fatal("handle address mismatch")
	}
	if len(handle.Sign([]byte("payload"))) == 0 {
		t.Fatal("empty signature")
	}
	if _, err := s.SigningHandle("no-such-id"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestStoreReloadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "pw", "testnet", slog.Default())
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	info, _, err := s.Generate(Options{Name: "persisted"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	reloaded, err := NewStore(dir, "pw", "testnet", slog.Default())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := reloaded.Get(info.ID)
	if err != nil {
		t.Fatalf("get after reload failed: %v", err)
	}
	if got.Address != info.Address || got.Metadata.Name != "persisted" {
		t.Fatalf("record did not survive reload: %+v", got)
	}
	handle, err := reloaded.SigningHandle(info.ID)
	if err != nil {
		t.Fatalf("signing handle after reload failed: %v", err)
	}
	if handle.Address() != info.Address {
		t.Fatal("reloaded handle address mismatch")
	}
}

func TestRemoveSoftDeletesAndFreesAddress(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "pw", "testnet", slog.Default())
	if err != nil {
		t.Fatalf("new store failed: %v", err)
	}
	info, secret, err := s.Generate(Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := s.Remove(info.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := s.Get(info.ID); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound after remove, got %v", err)
	}

	tombs, err := os.ReadDir(filepath.Join(dir, "identities", "deleted"))
	if err != nil || len(tombs) != 1 {
		t.Fatalf("expected one tombstone record, got %d (err %v)", len(tombs), err)
	}

	// Address is free again after the soft delete.
	if _, _, err := s.Import(secret.Seed, Options{}); err != nil {
		t.Fatalf("re-import after remove failed: %v", err)
	}
}

func TestListNeverExposesSecrets(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Generate(Options{Name: "a"}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	raw, err := json.Marshal(s.List())
	if err != nil {
		t.Fatalf("marshal list: %v", err)
	}
	for _, needle := range []string{`"seed"`, `"mnemonic"`, `"private_key"`, `"ciphertext"`} {
		if strings.Contains(string(raw), needle) {
			t.Fatalf("list output leaks %s", needle)
		}
	}
}
