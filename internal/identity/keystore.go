package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledgerline/go-backend/internal/securestore"
	"ledgerline/go-backend/pkg/models"
)

const keystoreVersion = 1

// minKeystorePasswordLen gates export; checked before any file is touched.
const minKeystorePasswordLen = 8

// KeystoreFile is the portable, password-protected export of one identity.
// The envelope seals the full Secret (seed + mnemonic) as JSON.
type KeystoreFile struct {
	Version    int                   `json:"version"`
	ID         string                `json:"id"`
	Address    string                `json:"address"`
	Encrypted  *securestore.Envelope `json:"encrypted"`
	Metadata   models.Metadata       `json:"metadata"`
	CreatedAt  time.Time             `json:"created_at"`
	ExportedAt time.Time             `json:"exported_at"`
}

func writeKeystoreFile(path string, file *KeystoreFile) error {
	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func readKeystoreFile(path string) (*KeystoreFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file KeystoreFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: malformed keystore file", ErrKeystoreIntegrity)
	}
	if file.Version != keystoreVersion || file.Encrypted == nil {
		return nil, fmt.Errorf("%w: unsupported keystore version", ErrKeystoreIntegrity)
	}
	return &file, nil
}
