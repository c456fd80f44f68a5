package ratelimiter

import (
	"testing"
	"time"
)

func TestSubmitLimiterBurstThenThrottle(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if !l.Allow("rA", now) || !l.Allow("rA", now) {
		t.Fatal("burst must be allowed")
	}
	if l.Allow("rA", now) {
		t.Fatal("third immediate submit must be throttled")
	}
	// Other accounts have their own bucket.
	if !l.Allow("rB", now) {
		t.Fatal("unrelated account must not be throttled")
	}
	// A second later one token has refilled.
	if !l.Allow("rA", now.Add(time.Second)) {
		t.Fatal("refilled token must be allowed")
	}
}

func TestSubmitLimiterNilAndBlankAllow(t *testing.T) {
	var l *SubmitLimiter
	if !l.Allow("rA", time.Now()) {
		t.Fatal("nil limiter allows everything")
	}
	if New(0, 0, 0) != nil {
		t.Fatal("invalid args must return nil limiter")
	}
	if !New(1, 1, 0).Allow("  ", time.Now()) {
		t.Fatal("blank account is never throttled")
	}
}
