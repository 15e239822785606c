package security

import (
	"crypto/rand"
	"fmt"
)

const alphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// rejection bound keeps the byte-to-alphabet mapping uniform.
const maxUnbiased = 256 - (256 % len(alphanumeric))

// RandomString returns n characters drawn uniformly from [0-9A-Za-z] using crypto/rand.
func RandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random string length must be positive, got %d", n)
	}
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// RandomService produces salts. It exists so callers can inject deterministic values in tests.
type RandomService interface {
	String(n int) (string, error)
}

type CryptoRandom struct{}

func (CryptoRandom) String(n int) (string, error) { return RandomString(n) }
