package hashing

import (
	"testing"

	"privacyguard/internal/config"
)

func newTestHasher(pepper string) *Hasher {
	cfg := &config.Config{}
	cfg.Hashing.Argon2MemoryCost = 1024
	cfg.Hashing.Argon2TimeCost = 1
	cfg.Hashing.Argon2Parallelism = 1
	cfg.Hashing.DigestPepper = pepper
	return NewHasher(cfg)
}

func TestEmailDigestDeterministic(t *testing.T) {
	h := newTestHasher("pepper-a")

	first := h.EmailDigest("user@example.com")
	if first == "" {
		t.Fatal("digest should not be empty")
	}
	if h.EmailDigest("user@example.com") != first {
		t.Error("same address must digest identically")
	}
	if h.EmailDigest("  USER@Example.COM ") != first {
		t.Error("normalization should collapse display variants")
	}
}

func TestEmailDigestVariesByInputAndPepper(t *testing.T) {
	h := newTestHasher("pepper-a")

	if h.EmailDigest("a@example.com") == h.EmailDigest("b@example.com") {
		t.Error("different addresses must not collide")
	}

	other := newTestHasher("pepper-b")
	if h.EmailDigest("a@example.com") == other.EmailDigest("a@example.com") {
		t.Error("digests must depend on the deployment pepper")
	}
}

func TestEmailDigestEmptyInput(t *testing.T) {
	h := newTestHasher("pepper-a")
	if h.EmailDigest("   ") != "" {
		t.Error("blank address should produce no digest")
	}
}
