// Package identity owns the full lifecycle of ledger wallets: generation,
// import, password-protected export, and durable storage of key material.
// It is the only package allowed to see secrets; everyone else works with
// public views or signing handles.
package identity

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ledgerline/go-backend/internal/platform/metrics"
	"ledgerline/go-backend/internal/securestore"
	"ledgerline/go-backend/pkg/models"
)

const (
	recordsDirName = "identities"
	deletedDirName = "deleted"
	exportsDirName = "exports"
)

// Store keeps every identity record in memory and mirrors each one to a
// JSON file under <dataDir>/identities. Secret fields inside records are
// sealed under the store passphrase.
type Store struct {
	mu         sync.RWMutex
	dataDir    string
	passphrase string
	network    string
	logger     *slog.Logger
	now        func() time.Time

	byID   map[string]*Record
	byAddr map[string]string
}

// NewStore loads all durable records from dataDir. The passphrase seals the
// secret fields of every record and must stay stable across restarts.
func NewStore(dataDir, passphrase, network string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		dataDir:    dataDir,
		passphrase: passphrase,
		network:    network,
		logger:     logger,
		now:        time.Now,
		byID:       make(map[string]*Record),
		byAddr:     make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Generate mints a fresh identity. The returned Secret is handed out exactly
// once; only its sealed form survives.
func (s *Store) Generate(opts Options) (models.Identity, models.Secret, error) {
	entropy, err := NewEntropy()
	if err != nil {
		return models.Identity{}, models.Secret{}, err
	}
	return s.admit(entropy, opts)
}

// Import reconstructs an identity from an externally supplied secret. It
// rejects secrets whose address is already present.
func (s *Store) Import(secret string, opts Options) (models.Identity, models.Secret, error) {
	entropy, err := ParseSecret(secret)
	if err != nil {
		return models.Identity{}, models.Secret{}, err
	}
	return s.admit(entropy, opts)
}

func (s *Store) admit(entropy []byte, opts Options) (models.Identity, models.Secret, error) {
	keys, err := DeriveKeys(entropy)
	if err != nil {
		return models.Identity{}, models.Secret{}, err
	}
	secret, err := SecretFromEntropy(entropy)
	if err != nil {
		return models.Identity{}, models.Secret{}, err
	}

	privEnv, err := securestore.Seal(s.passphrase, []byte(hex.EncodeToString(keys.PrivateKey)))
	if err != nil {
		return models.Identity{}, models.Secret{}, err
	}
	secretEnv, err := securestore.SealJSON(s.passphrase, secret)
	if err != nil {
		return models.Identity{}, models.Secret{}, err
	}

	rec := &Record{
		ID:        uuid.NewString(),
		Address:   keys.Address,
		PublicKey: append([]byte(nil), keys.PublicKey...),
		Network:   s.network,
		CreatedAt: s.now().UTC(),
		Metadata: models.Metadata{
			Name:        strings.TrimSpace(opts.Name),
			Description: strings.TrimSpace(opts.Description),
			Tags:        opts.Tags,
		},
		Encrypted: EncryptedSecrets{PrivateKey: privEnv, Seed: secretEnv},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAddr[rec.Address]; exists {
		return models.Identity{}, models.Secret{}, fmt.Errorf("%w: %s", ErrDuplicateIdentity, rec.Address)
	}
	if err := s.writeRecord(rec); err != nil {
		return models.Identity{}, models.Secret{}, err
	}
	s.byID[rec.ID] = rec
	s.byAddr[rec.Address] = rec.ID
	metrics.IdentitiesStored.Set(float64(len(s.byID)))
	s.logger.Info("identity stored", "identity_id", rec.ID, "address", rec.Address)
	return rec.public(), secret, nil
}

// ExportKeystore seals the identity's secret under an export password and
// writes a portable keystore file. The password check runs before any I/O.
func (s *Store) ExportKeystore(id, password, filename string) (string, error) {
	if len(password) < minKeystorePasswordLen {
		return "", ErrWeakPassword
	}

	s.mu.RLock()
	rec, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}

	var secret models.Secret
	if err := securestore.OpenJSON(s.passphrase, rec.Encrypted.Seed, &secret); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	env, err := securestore.SealJSON(password, secret)
	if err != nil {
		return "", err
	}

	path := filename
	if path == "" {
		path = filepath.Join(s.dataDir, exportsDirName, fmt.Sprintf("keystore-%s.json", rec.Address))
	}
	file := &KeystoreFile{
		Version:    keystoreVersion,
		ID:         rec.ID,
		Address:    rec.Address,
		Encrypted:  env,
		Metadata:   rec.Metadata,
		CreatedAt:  rec.CreatedAt,
		ExportedAt: s.now().UTC(),
	}
	if err := writeKeystoreFile(path, file); err != nil {
		return "", err
	}
	s.logger.Info("keystore exported", "identity_id", rec.ID, "path", path)
	return path, nil
}

// ImportFromKeystore decrypts an exported keystore file and admits the
// identity it contains. The decrypted secret must re-derive the address the
// file claims, otherwise the file is rejected as tampered.
func (s *Store) ImportFromKeystore(path, password string) (models.Identity, error) {
	file, err := readKeystoreFile(path)
	if err != nil {
		return models.Identity{}, err
	}

	var secret models.Secret
	if err := securestore.OpenJSON(password, file.Encrypted, &secret); err != nil {
		if errors.Is(err, securestore.ErrAuthFailed) {
			return models.Identity{}, ErrWrongPassword
		}
		return models.Identity{}, fmt.Errorf("%w: %v", ErrKeystoreIntegrity, err)
	}
	entropy, err := ParseSecret(secret.Seed)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: keystore secret unreadable", ErrKeystoreIntegrity)
	}
	keys, err := DeriveKeys(entropy)
	if err != nil {
		return models.Identity{}, err
	}
	if keys.Address != file.Address {
		return models.Identity{}, fmt.Errorf("%w: derived %s, file says %s", ErrKeystoreIntegrity, keys.Address, file.Address)
	}

	info, _, err := s.admit(entropy, Options{
		Name:        file.Metadata.Name,
		Description: file.Metadata.Description,
		Tags:        file.Metadata.Tags,
	})
	if err != nil {
		return models.Identity{}, err
	}
	return info, nil
}

// SigningHandle reconstructs a ledger signer from stored key material.
func (s *Store) SigningHandle(id string) (*Handle, error) {
	s.mu.RLock()
	rec, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}

	plaintext, err := securestore.Open(s.passphrase, rec.Encrypted.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	priv, err := hex.DecodeString(string(plaintext))
	if err != nil || len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: bad private key encoding", ErrInvalidKeyMaterial)
	}
	return &Handle{
		address: rec.Address,
		pub:     append(ed25519.PublicKey(nil), rec.PublicKey...),
		priv:    ed25519.PrivateKey(priv),
	}, nil
}

// Get returns the public view of one identity.
func (s *Store) Get(id string) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return models.Identity{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}
	return rec.public(), nil
}

// List returns public views of every stored identity. Secret material never
// appears here.
func (s *Store) List() []models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Identity, 0, len(s.byID))
	for _, rec := range s.byID {
		out = append(out, rec.public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Remove soft-deletes an identity: the record file moves to a deleted/
// subdirectory with a deletion stamp and the address becomes importable
// again. The sealed secrets stay recoverable by an operator.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, id)
	}

	deletedAt := s.now().UTC()
	rec.DeletedAt = &deletedAt
	deletedDir := filepath.Join(s.dataDir, recordsDirName, deletedDirName)
	if err := os.MkdirAll(deletedDir, 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	tomb := filepath.Join(deletedDir, fmt.Sprintf("%s-%d.json", rec.ID, deletedAt.Unix()))
	if err := os.WriteFile(tomb, raw, 0o600); err != nil {
		return err
	}
	if err := os.Remove(s.recordPath(rec.ID)); err != nil && !os.IsNotExist(err) {
		return err
	}

	delete(s.byID, rec.ID)
	delete(s.byAddr, rec.Address)
	metrics.IdentitiesStored.Set(float64(len(s.byID)))
	s.logger.Info("identity removed", "identity_id", rec.ID, "address", rec.Address)
	return nil
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dataDir, recordsDirName, id+".json")
}

func (s *Store) writeRecord(rec *Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Join(s.dataDir, recordsDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.recordPath(rec.ID), raw, 0o600)
}

func (s *Store) load() error {
	dir := filepath.Join(s.dataDir, recordsDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("skipping unreadable identity record", "file", entry.Name())
			continue
		}
		s.byID[rec.ID] = &rec
		s.byAddr[rec.Address] = rec.ID
	}
	metrics.IdentitiesStored.Set(float64(len(s.byID)))
	s.logger.Info("identity store loaded", "count", len(s.byID))
	return nil
}
