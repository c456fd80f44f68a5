// Package securestore seals secret material under a passphrase. Keys are
// derived with argon2id and the payload is sealed with XChaCha20-Poly1305,
// so any tampering or a wrong passphrase fails authentication instead of
// decrypting to garbage.
package securestore

import (
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	envelopeVersion = 1
	saltSize        = 16

	kdfName        = "argon2id"
	kdfTime        = uint32(2)
	kdfMemoryKB    = uint32(64 * 1024)
	kdfParallelism = uint8(1)
)

var (
	ErrAuthFailed = errors.New("securestore: authentication failed")
	ErrInvalid    = errors.New("securestore: envelope is invalid")
)

// Envelope is the versioned sealed form. KDF parameters ride along so old
// envelopes stay readable after defaults change.
type Envelope struct {
	Version     uint32 `json:"version"`
	KDF         string `json:"kdf"`
	KDFTime     uint32 `json:"kdf_time"`
	KDFMemoryKB uint32 `json:"kdf_memory_kb"`
	KDFThreads  uint8  `json:"kdf_threads"`
	Salt        []byte `json:"salt"`
	Nonce       []byte `json:"nonce"`
	Ciphertext  []byte `json:"ciphertext"`
}

// Seal encrypts plaintext under the passphrase with fresh salt and nonce.
func Seal(passphrase string, plaintext []byte) (*Envelope, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := argon2.IDKey([]byte(passphrase), salt, kdfTime, kdfMemoryKB, kdfParallelism, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return &Envelope{
		Version:     envelopeVersion,
		KDF:         kdfName,
		KDFTime:     kdfTime,
		KDFMemoryKB: kdfMemoryKB,
		KDFThreads:  kdfParallelism,
		Salt:        salt,
		Nonce:       nonce,
		Ciphertext:  aead.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Open authenticates and decrypts an envelope. A wrong passphrase and a
// corrupted ciphertext are indistinguishable; both return ErrAuthFailed.
func Open(passphrase string, env *Envelope) ([]byte, error) {
	if env == nil || env.Version != envelopeVersion || env.KDF != kdfName {
		return nil, ErrInvalid
	}
	key := argon2.IDKey([]byte(passphrase), env.Salt, env.KDFTime, env.KDFMemoryKB, env.KDFThreads, chacha20poly1305.KeySize)
	defer zeroBytes(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// SealJSON marshals v and seals the result.
func SealJSON(passphrase string, v any) (*Envelope, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Seal(passphrase, payload)
}

// OpenJSON opens an envelope and unmarshals the plaintext into v.
func OpenJSON(passphrase string, env *Envelope, v any) error {
	plaintext, err := Open(passphrase, env)
	if err != nil {
		return err
	}
	defer zeroBytes(plaintext)
	return json.Unmarshal(plaintext, v)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
