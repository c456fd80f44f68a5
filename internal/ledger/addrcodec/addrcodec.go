// Package addrcodec implements the ledger's base58check encodings: classic
// account addresses (prefix 0x00, spelled with a leading 'r') and family
// seeds (prefix 0x21, leading 's'). Payloads carry a 4-byte double-SHA256
// checksum and use the ledger's own base58 alphabet.
package addrcodec

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/ripemd160"
)

const ledgerAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

var alphabet = base58.NewAlphabet(ledgerAlphabet)

const (
	prefixAccountID = 0x00
	prefixSeed      = 0x21

	// SeedEntropyLen is the entropy payload of a family seed.
	SeedEntropyLen = 16

	accountIDLen = 20
	checksumLen  = 4

	// ed25519 public keys are tagged before hashing so they cannot collide
	// with secp256k1 keys of the same bytes.
	ed25519KeyPrefix = 0xED
)

var (
	ErrBadChecksum = errors.New("addrcodec: checksum mismatch")
	ErrBadPrefix   = errors.New("addrcodec: unexpected version prefix")
	ErrBadLength   = errors.New("addrcodec: unexpected payload length")
)

// EncodeAddress derives the classic address for an ed25519 public key:
// base58check over RIPEMD160(SHA256(0xED || pubkey)).
func EncodeAddress(pub ed25519.PublicKey) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: public key is %d bytes", ErrBadLength, len(pub))
	}
	tagged := make([]byte, 0, 1+len(pub))
	tagged = append(tagged, ed25519KeyPrefix)
	tagged = append(tagged, pub...)
	sha := sha256.Sum256(tagged)
	rip := ripemd160.New()
	rip.Write(sha[:])
	return encodeChecked(prefixAccountID, rip.Sum(nil)), nil
}

// DecodeAddress verifies checksum and prefix and returns the 20-byte
// account id.
func DecodeAddress(addr string) ([]byte, error) {
	payload, err := decodeChecked(addr, prefixAccountID)
	if err != nil {
		return nil, err
	}
	if len(payload) != accountIDLen {
		return nil, fmt.Errorf("%w: account id is %d bytes", ErrBadLength, len(payload))
	}
	return payload, nil
}

// IsValidAddress reports whether addr is a well-formed classic address.
func IsValidAddress(addr string) bool {
	_, err := DecodeAddress(addr)
	return err == nil
}

// EncodeSeed wraps 16 bytes of entropy as a family seed string.
func EncodeSeed(entropy []byte) (string, error) {
	if len(entropy) != SeedEntropyLen {
		return "", fmt.Errorf("%w: seed entropy is %d bytes", ErrBadLength, len(entropy))
	}
	return encodeChecked(prefixSeed, entropy), nil
}

// DecodeSeed recovers the entropy from a family seed string.
func DecodeSeed(seed string) ([]byte, error) {
	payload, err := decodeChecked(seed, prefixSeed)
	if err != nil {
		return nil, err
	}
	if len(payload) != SeedEntropyLen {
		return nil, fmt.Errorf("%w: seed entropy is %d bytes", ErrBadLength, len(payload))
	}
	return payload, nil
}

func encodeChecked(prefix byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+checksumLen)
	buf = append(buf, prefix)
	buf = append(buf, payload...)
	buf = append(buf, checksum(buf)...)
	return base58.FastBase58EncodingAlphabet(buf, alphabet)
}

func decodeChecked(s string, wantPrefix byte) ([]byte, error) {
	raw, err := base58.FastBase58DecodingAlphabet(s, alphabet)
	if err != nil {
		return nil, fmt.Errorf("addrcodec: %w", err)
	}
	if len(raw) < 1+checksumLen {
		return nil, ErrBadLength
	}
	body, sum := raw[:len(raw)-checksumLen], raw[len(raw)-checksumLen:]
	if !bytes.Equal(sum, checksum(body)) {
		return nil, ErrBadChecksum
	}
	if body[0] != wantPrefix {
		return nil, ErrBadPrefix
	}
	return body[1:], nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}
