// Package rpc implements the ledger.Client contract over a websocket
// JSON-RPC connection to a ledger node. Requests are correlated by id, so
// one connection serves concurrent callers.
package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ledgerline/go-backend/internal/ledger"
)

const defaultCallTimeout = 30 * time.Second

// Client talks to one ledger node. Safe for concurrent use; a failed
// connection poisons all pending calls and the client must be re-dialed.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
	logger  *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan response
	closed  bool
	readErr error
}

type request struct {
	ID      uint64 `json:"id"`
	Command string `json:"command"`

	Account     string          `json:"account,omitempty"`
	LedgerIndex string          `json:"ledger_index,omitempty"`
	TxJSON      json.RawMessage `json:"tx_json,omitempty"`
}

type response struct {
	ID           uint64          `json:"id"`
	Status       string          `json:"status"`
	ErrorCode    string          `json:"error,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result"`
}

// Dial connects to the node at endpoint (a ws:// or wss:// URL). timeout
// bounds every individual call, submission waits included.
func Dial(ctx context.Context, endpoint string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial ledger node: %w", err)
	}
	c := &Client{
		conn:    conn,
		timeout: timeout,
		logger:  logger,
		pending: make(map[uint64]chan response),
	}
	go c.readLoop()
	return c, nil
}

// Close shuts the connection down and fails all pending calls.
func (c *Client) Close() error {
	c.failPending(errors.New("client closed"))
	return c.conn.Close()
}

func (c *Client) readLoop() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.failPending(err)
			return
		}
		var resp response
		if err := json.Unmarshal(raw, &resp); err != nil {
			c.logger.Warn("dropping unparseable ledger message")
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.readErr = err
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) call(ctx context.Context, req request) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.Lock()
	if c.closed {
		err := c.readErr
		c.mu.Unlock()
		return nil, fmt.Errorf("ledger connection lost: %w", err)
	}
	c.nextID++
	req.ID = c.nextID
	ch := make(chan response, 1)
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
		return nil, fmt.Errorf("write to ledger node: %w", err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("ledger connection lost: %w", c.readErr)
		}
		if resp.Status != "success" {
			return nil, mapNodeError(resp)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ledger.ErrTimeout
		}
		return nil, ctx.Err()
	}
}

func mapNodeError(resp response) error {
	if resp.ErrorCode == "actNotFound" {
		return ledger.ErrAccountNotFound
	}
	return &ledger.SubmissionError{EngineResult: resp.ErrorCode, Reason: resp.ErrorMessage}
}

type accountInfoResult struct {
	AccountData struct {
		Account    string `json:"Account"`
		Balance    string `json:"Balance"`
		OwnerCount uint32 `json:"OwnerCount"`
		Sequence   uint32 `json:"Sequence"`
	} `json:"account_data"`
}

// AccountInfo implements ledger.Client.
func (c *Client) AccountInfo(ctx context.Context, address string) (ledger.AccountInfo, error) {
	raw, err := c.call(ctx, request{Command: "account_info", Account: address, LedgerIndex: "validated"})
	if err != nil {
		return ledger.AccountInfo{}, err
	}
	var result accountInfoResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ledger.AccountInfo{}, fmt.Errorf("decode account_info: %w", err)
	}
	drops, err := strconv.ParseInt(result.AccountData.Balance, 10, 64)
	if err != nil {
		return ledger.AccountInfo{}, fmt.Errorf("decode account balance %q: %w", result.AccountData.Balance, err)
	}
	return ledger.AccountInfo{
		Address:      result.AccountData.Account,
		BalanceDrops: drops,
		OwnerCount:   result.AccountData.OwnerCount,
		Sequence:     result.AccountData.Sequence,
	}, nil
}

type accountLinesResult struct {
	Lines []struct {
		Account  string `json:"account"`
		Currency string `json:"currency"`
		Balance  string `json:"balance"`
		Limit    string `json:"limit"`
	} `json:"lines"`
}

// AccountLines implements ledger.Client.
func (c *Client) AccountLines(ctx context.Context, address string) ([]ledger.Line, error) {
	raw, err := c.call(ctx, request{Command: "account_lines", Account: address, LedgerIndex: "validated"})
	if err != nil {
		return nil, err
	}
	var result accountLinesResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode account_lines: %w", err)
	}
	lines := make([]ledger.Line, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, ledger.Line{
			Currency: l.Currency,
			Issuer:   l.Account,
			Balance:  l.Balance,
			Limit:    l.Limit,
		})
	}
	return lines, nil
}

type trustSetTx struct {
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	LimitAmount     limitAmount     `json:"LimitAmount"`
	QualityIn       uint32          `json:"QualityIn,omitempty"`
	QualityOut      uint32          `json:"QualityOut,omitempty"`
	Memo            string          `json:"Memo,omitempty"`
	SigningPubKey   string          `json:"SigningPubKey"`
	TxnSignature    string          `json:"TxnSignature,omitempty"`
}

type limitAmount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

type submitResult struct {
	EngineResult string `json:"engine_result"`
	TxJSON       struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
	Validated bool `json:"validated"`
}

// SubmitAndWait implements ledger.Client. The signer signs the canonical
// JSON form of the operation; the node answer is awaited until validated or
// the call deadline expires.
func (c *Client) SubmitAndWait(ctx context.Context, tx ledger.TrustSet, signer ledger.Signer) (ledger.SubmitResult, error) {
	payload := trustSetTx{
		TransactionType: "TrustSet",
		Account:         tx.Account,
		LimitAmount: limitAmount{
			Currency: tx.Currency,
			Issuer:   tx.Issuer,
			Value:    tx.Limit,
		},
		QualityIn:     tx.QualityIn,
		QualityOut:    tx.QualityOut,
		Memo:          tx.Memo,
		SigningPubKey: hex.EncodeToString(signer.PublicKey()),
	}
	unsigned, err := json.Marshal(payload)
	if err != nil {
		return ledger.SubmitResult{}, err
	}
	payload.TxnSignature = hex.EncodeToString(signer.Sign(unsigned))
	signed, err := json.Marshal(payload)
	if err != nil {
		return ledger.SubmitResult{}, err
	}

	raw, err := c.call(ctx, request{Command: "submit", TxJSON: signed})
	if err != nil {
		return ledger.SubmitResult{}, err
	}
	var result submitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return ledger.SubmitResult{}, fmt.Errorf("decode submit result: %w", err)
	}
	if result.EngineResult != "tesSUCCESS" {
		return ledger.SubmitResult{}, &ledger.SubmissionError{
			EngineResult: result.EngineResult,
			Reason:       "operation was not applied",
		}
	}
	return ledger.SubmitResult{Hash: result.TxJSON.Hash, Validated: result.Validated}, nil
}
