package identity

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"ledgerline/go-backend/internal/ledger/addrcodec"
)

const hkdfInfoSigning = "ledgerline/identity/signing/v1"

// DerivedKeys is the full key material derived from one secret. The address
// is a pure function of the entropy: the same secret always lands on the
// same address.
type DerivedKeys struct {
	PrivateKey ed25519.PrivateKey
	PublicKey  ed25519.PublicKey
	Address    string
}

// DeriveKeys expands 16 bytes of entropy into an ed25519 keypair and its
// classic address. Entropy goes through the canonical mnemonic so that seed
// and mnemonic imports converge on identical keys.
func DeriveKeys(entropy []byte) (*DerivedKeys, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	seedBytes := bip39.NewSeed(mnemonic, "")

	signingSeed := make([]byte, ed25519.SeedSize)
	reader := hkdf.New(sha256.New, seedBytes, nil, []byte(hkdfInfoSigning))
	if _, err := io.ReadFull(reader, signingSeed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	priv := ed25519.NewKeyFromSeed(signingSeed)
	pub := priv.Public().(ed25519.PublicKey)
	address, err := addrcodec.EncodeAddress(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return &DerivedKeys{
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    address,
	}, nil
}
