package identity

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"ledgerline/go-backend/internal/ledger/addrcodec"
	"ledgerline/go-backend/pkg/models"
)

const entropyBits = 128

// NewEntropy draws fresh secret entropy for a generated identity.
func NewEntropy() ([]byte, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return entropy, nil
}

// SecretFromEntropy renders both user-facing encodings of the entropy.
func SecretFromEntropy(entropy []byte) (models.Secret, error) {
	seed, err := addrcodec.EncodeSeed(entropy)
	if err != nil {
		return models.Secret{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return models.Secret{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return models.Secret{Seed: seed, Mnemonic: mnemonic}, nil
}

// ParseSecret accepts either a family seed string or a 12-word mnemonic and
// normalizes it to entropy. Anything else is ErrInvalidSecret.
func ParseSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	if !strings.Contains(secret, " ") {
		entropy, err := addrcodec.DecodeSeed(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
		}
		return entropy, nil
	}

	mnemonic := strings.Join(strings.Fields(secret), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: invalid mnemonic", ErrInvalidSecret)
	}
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if len(entropy) != addrcodec.SeedEntropyLen {
		return nil, fmt.Errorf("%w: only 12-word mnemonics are supported", ErrInvalidSecret)
	}
	return entropy, nil
}
