// Package access: token.go verifies the gateway bearer token against an argon2id hash.
// Hash format: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
package access

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used by HashToken.
const (
	argonMemory      uint32 = 64 * 1024
	argonIterations  uint32 = 3
	argonParallelism uint8  = 2
	argonKeyLength   uint32 = 32
)

// HashToken encodes token with salt in the PHC argon2id format.
func HashToken(token string, salt []byte) string {
	hash := argon2.IDKey([]byte(token), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

// VerifyToken checks token against an encoded argon2id hash in constant time.
func VerifyToken(token, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("malformed argon2id hash")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("failed to parse argon2id parameters")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("failed to decode argon2id salt")
		return false
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("failed to decode argon2id hash")
		return false
	}

	computed := argon2.IDKey([]byte(token), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// MaxConcurrentVerifications caps argon2 runs in flight. Each run holds
// argonMemory KiB, so the cap bounds the memory spent on unknown tokens.
const MaxConcurrentVerifications = 4

// TokenVerifier remembers tokens that already passed VerifyToken,
// keyed by their SHA-256 digest, so argon2 runs once per token.
type TokenVerifier struct {
	encodedHash string
	inflight    chan struct{}

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]struct{}
}

// NewTokenVerifier creates a verifier for one encoded hash.
func NewTokenVerifier(encodedHash string) *TokenVerifier {
	return &TokenVerifier{
		encodedHash: encodedHash,
		inflight:    make(chan struct{}, MaxConcurrentVerifications),
		verified:    make(map[[sha256.Size]byte]struct{}),
	}
}

// Cached reports whether token already passed Verify. It never hashes with argon2.
func (v *TokenVerifier) Cached(token string) bool {
	if token == "" {
		return false
	}
	digest := sha256.Sum256([]byte(token))
	v.mu.RLock()
	_, ok := v.verified[digest]
	v.mu.RUnlock()
	return ok
}

// Verify reports whether token matches the configured hash.
// At most MaxConcurrentVerifications argon2 runs proceed at once.
func (v *TokenVerifier) Verify(token string) bool {
	if token == "" {
		return false
	}
	if v.Cached(token) {
		return true
	}
	digest := sha256.Sum256([]byte(token))

	v.inflight <- struct{}{}
	ok := VerifyToken(token, v.encodedHash)
	<-v.inflight
	if !ok {
		return false
	}

	v.mu.Lock()
	v.verified[digest] = struct{}{}
	v.mu.Unlock()
	return true
}
