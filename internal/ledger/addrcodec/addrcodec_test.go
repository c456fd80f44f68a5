package addrcodec

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key failed: %v", err)
	}
	addr, err := EncodeAddress(pub)
	if err != nil {
		t.Fatalf("encode address failed: %v", err)
	}
	if !strings.HasPrefix(addr, "r") {
		t.Fatalf("classic address must start with r, got %q", addr)
	}
	id, err := DecodeAddress(addr)
	if err != nil {
		t.Fatalf("decode address failed: %v", err)
	}
	if len(id) != accountIDLen {
		t.Fatalf("account id length = %d", len(id))
	}

	again, err := EncodeAddress(pub)
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}
	if again != addr {
		t.Fatal("address derivation must be deterministic")
	}
}

func TestDecodeAddressRejectsCorruption(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(rand.Reader)
	addr, err := EncodeAddress(pub)
	if err != nil {
		t.Fatalf("encode address failed: %v", err)
	}
	// Flip one character; checksum must catch it.
	mutated := []byte(addr)
	if mutated[len(mutated)-1] == 'r' {
		mutated[len(mutated)-1] = 'p'
	} else {
		mutated[len(mutated)-1] = 'r'
	}
	if IsValidAddress(string(mutated)) {
		t.Fatal("mutated address must not validate")
	}
	if IsValidAddress("not an address") {
		t.Fatal("garbage must not validate")
	}
}

func TestSeedRoundTrip(t *testing.T) {
	entropy := make([]byte, SeedEntropyLen)
	if _, err := rand.Read(entropy); err != nil {
		t.Fatalf("entropy failed: %v", err)
	}
	seed, err := EncodeSeed(entropy)
	if err != nil {
		t.Fatalf("encode seed failed: %v", err)
	}
	if !strings.HasPrefix(seed, "s") {
		t.Fatalf("family seed must start with s, got %q", seed)
	}
	back, err := DecodeSeed(seed)
	if err != nil {
		t.Fatalf("decode seed failed: %v", err)
	}
	for i := range entropy {
		if back[i] != entropy[i] {
			t.Fatal("seed entropy round trip mismatch")
		}
	}
}

func TestSeedAndAddressPrefixesDiffer(t *testing.T) {
	entropy := make([]byte, SeedEntropyLen)
	seed, err := EncodeSeed(entropy)
	if err != nil {
		t.Fatalf("encode seed failed: %v", err)
	}
	if _, err := DecodeAddress(seed); err == nil {
		t.Fatal("a seed string must not decode as an address")
	}
}
