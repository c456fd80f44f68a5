// Package ratelimiter throttles ledger submissions per account so one
// misbehaving caller cannot flood the network with TrustSet traffic.
package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SubmitLimiter applies a token bucket per account address and periodically
// evicts idle entries.
type SubmitLimiter struct {
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
	byAccount map[string]*entry
	hits      uint64
	idleTTL   time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a per-account limiter; returns nil if args are invalid, and a
// nil limiter allows everything.
func New(rps float64, burst int, idleTTL time.Duration) *SubmitLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &SubmitLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		byAccount: make(map[string]*entry),
		idleTTL:   idleTTL,
	}
}

// Allow reports whether the account may submit one more operation at now.
func (l *SubmitLimiter) Allow(account string, now time.Time) bool {
	if l == nil {
		return true
	}
	account = strings.TrimSpace(account)
	if account == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byAccount[account]
	if !ok {
		e = &entry{
			limiter:  rate.NewLimiter(l.limit, l.burst),
			lastSeen: now,
		}
		l.byAccount[account] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byAccount {
			if v.lastSeen.Before(cutoff) {
				delete(l.byAccount, k)
			}
		}
	}

	return allowed
}
