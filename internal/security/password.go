package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	HasherHMACSHA256 = "hmac-sha256"
	HasherArgon2ID   = "argon2id"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
)

// PasswordHasher derives a deterministic hex digest from a password and its per-credential salt.
type PasswordHasher interface {
	Digest(plaintext, salt string) string
	Verify(plaintext, salt, digest string) bool
}

func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", HasherHMACSHA256:
		return HMACHasher{}, nil
	case HasherArgon2ID:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", name)
	}
}

// HMACHasher computes hex(HMAC-SHA256(key=salt, message=password)).
type HMACHasher struct{}

func (HMACHasher) Digest(plaintext, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(plaintext))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h HMACHasher) Verify(plaintext, salt, digest string) bool {
	return constantTimeEqual(h.Digest(plaintext, salt), digest)
}

// Argon2Hasher computes hex(argon2id(password, salt)). The cost parameters are fixed per
// deployment since they are not stored alongside the digest.
type Argon2Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
}

func NewArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{time: argonTime, memory: argonMemory, threads: argonThreads}
}

func (h Argon2Hasher) Digest(plaintext, salt string) string {
	key := argon2.IDKey([]byte(plaintext), []byte(salt), h.time, h.memory, h.threads, argonKeyLen)
	return hex.EncodeToString(key)
}

func (h Argon2Hasher) Verify(plaintext, salt, digest string) bool {
	return constantTimeEqual(h.Digest(plaintext, salt), digest)
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
