package hashing

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/argon2"

	"privacyguard/internal/config"
)

type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
}

// Hasher produces deterministic, peppered argon2id digests of email
// addresses. Determinism matters: the digest is the cache and storage key
// for scan results, so the same address must always digest identically.
type Hasher struct {
	params Argon2Params
	salt   []byte
}

func NewHasher(cfg *config.Config) *Hasher {
	// The salt is derived from the deployment pepper, not random: a random
	// salt would break digest stability across processes.
	salt := sha256.Sum256([]byte(cfg.Hashing.DigestPepper + ":email-digest"))

	return &Hasher{
		params: Argon2Params{
			Memory:      uint32(cfg.Hashing.Argon2MemoryCost),
			Iterations:  uint32(cfg.Hashing.Argon2TimeCost),
			Parallelism: uint8(cfg.Hashing.Argon2Parallelism),
			KeyLength:   32,
		},
		salt: salt[:],
	}
}

// EmailDigest returns the stable argon2id digest for an address. Addresses
// are normalized (trimmed, lowercased) first so display variants collide.
func (h *Hasher) EmailDigest(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return ""
	}

	digest := argon2.IDKey(
		[]byte(normalized),
		h.salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)

	return base64.RawURLEncoding.EncodeToString(digest)
}
