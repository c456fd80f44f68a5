package identity

import (
	"time"

	"ledgerline/go-backend/internal/securestore"
	"ledgerline/go-backend/pkg/models"
)

// Options are the caller-supplied labels attached to a new identity.
type Options struct {
	Name        string
	Description string
	Tags        []string
}

// Record is the durable on-disk form of one identity. Secret material lives
// only inside sealed envelopes; everything else is plaintext metadata.
type Record struct {
	ID        string           `json:"id"`
	Address   string           `json:"address"`
	PublicKey []byte           `json:"public_key"`
	Network   string           `json:"network"`
	CreatedAt time.Time        `json:"created_at"`
	Metadata  models.Metadata  `json:"metadata"`
	Encrypted EncryptedSecrets `json:"encrypted"`
	DeletedAt *time.Time       `json:"deleted_at,omitempty"`
}

type EncryptedSecrets struct {
	PrivateKey *securestore.Envelope `json:"private_key"`
	Seed       *securestore.Envelope `json:"seed"`
}

func (r *Record) public() models.Identity {
	return models.Identity{
		ID:        r.ID,
		Address:   r.Address,
		PublicKey: append([]byte(nil), r.PublicKey...),
		Network:   r.Network,
		CreatedAt: r.CreatedAt,
		Metadata:  r.Metadata,
	}
}
