// Package ledger defines the narrow contract this process has with the
// distributed ledger network. The core managers consume the Client interface
// only; the websocket adapter in internal/adapters/rpc implements it against
// a live node, and tests substitute fakes.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// NativeCurrency is the ledger's own currency. Trustlines never reference it.
const NativeCurrency = "XRP"

// DropsPerXRP converts between the integer on-ledger unit and XRP.
const DropsPerXRP = 1_000_000

var (
	// ErrTimeout is returned when the ledger does not validate or answer a
	// request within the caller's deadline. The in-flight submission is not
	// cancelled server side.
	ErrTimeout = errors.New("ledger request timed out")

	// ErrAccountNotFound is returned by AccountInfo for unfunded addresses.
	ErrAccountNotFound = errors.New("account not found on ledger")
)

// SubmissionError reports a submitted operation the ledger rejected.
type SubmissionError struct {
	EngineResult string
	Reason       string
}

func (e *SubmissionError) Error() string {
	if e.EngineResult != "" {
		return fmt.Sprintf("ledger rejected submission: %s: %s", e.EngineResult, e.Reason)
	}
	return fmt.Sprintf("ledger rejected submission: %s", e.Reason)
}

// TrustSet is the one operation shape this service submits. A Limit of "0"
// removes the relationship.
type TrustSet struct {
	Account    string
	Currency   string
	Issuer     string
	Limit      string
	QualityIn  uint32
	QualityOut uint32
	Memo       string
}

// SubmitResult is the ledger's answer to a validated submission.
type SubmitResult struct {
	Hash      string
	Validated bool
}

// AccountInfo is the slice of account state the managers care about.
type AccountInfo struct {
	Address      string
	BalanceDrops int64
	OwnerCount   uint32
	Sequence     uint32
}

// Line is one trust relationship as reported by the ledger for an account.
type Line struct {
	Currency string
	Issuer   string
	Balance  string
	Limit    string
}

// Signer produces signatures over operation payloads without exposing the
// private key. Handles are minted by the identity store.
type Signer interface {
	Address() string
	PublicKey() []byte
	Sign(payload []byte) []byte
}

// Client is everything the core needs from the ledger network.
type Client interface {
	SubmitAndWait(ctx context.Context, tx TrustSet, signer Signer) (SubmitResult, error)
	AccountInfo(ctx context.Context, address string) (AccountInfo, error)
	AccountLines(ctx context.Context, address string) ([]Line, error)
}
