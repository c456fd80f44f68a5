package identity

import "crypto/ed25519"

// Handle signs ledger operations for one identity without exposing the
// private key to callers. It satisfies ledger.Signer.
type Handle struct {
	address string
	pub     ed25519.PublicKey
	priv    ed25519.PrivateKey
}

func (h *Handle) Address() string { return h.address }

func (h *Handle) PublicKey() []byte {
	return append([]byte(nil), h.pub...)
}

func (h *Handle) Sign(payload []byte) []byte {
	return ed25519.Sign(h.priv, payload)
}
