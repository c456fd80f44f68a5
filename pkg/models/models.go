package models

import "time"

// Identity is the public view of a stored wallet. Secret material never
// travels on this struct; it is handed out exactly once at generation or
// import time via Secret.
type Identity struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	PublicKey []byte    `json:"public_key"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"created_at"`
	Metadata  Metadata  `json:"metadata"`
}

type Metadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Secret carries the two interchangeable encodings of an identity's key
// material: the compact family seed and the mnemonic phrase. Either one
// re-derives the same address.
type Secret struct {
	Seed     string `json:"seed"`
	Mnemonic string `json:"mnemonic"`
}

// Trustline mirrors one trust relationship as reported by the ledger.
type Trustline struct {
	Account  string `json:"account"`
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Limit    string `json:"limit"`
	Balance  string `json:"balance"`
}

// TrustlineStatus classifies a trustline by its balance sign.
type TrustlineStatus string

const (
	StatusEmpty   TrustlineStatus = "empty"
	StatusHolding TrustlineStatus = "holding"
	StatusOwing   TrustlineStatus = "owing"
)

// TrustlineInfo is a Trustline enriched for display. NearLimit is an overlay
// on top of Status rather than a fourth state: a holding or owing line keeps
// its sign classification and additionally reports limit proximity.
type TrustlineInfo struct {
	Trustline
	HasBalance       bool            `json:"has_balance"`
	UtilizationRatio float64         `json:"utilization_ratio"`
	Status           TrustlineStatus `json:"status"`
	NearLimit        bool            `json:"near_limit"`
}

// Receipt is returned by every successful trustline mutation.
type Receipt struct {
	Hash      string    `json:"hash"`
	Validated bool      `json:"validated"`
	Line      Trustline `json:"line"`
}

// CapacityReport says whether one more trustline fits under the account's
// reserve, and by how much it falls short if not.
type CapacityReport struct {
	CanCreate       bool   `json:"can_create"`
	Balance         string `json:"balance"`
	ReserveRequired string `json:"reserve_required"`
	Shortfall       string `json:"shortfall,omitempty"`
}
