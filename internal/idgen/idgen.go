// Package idgen issues time-sortable string identifiers for identity records.
package idgen

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

const (
	SchemeULID   = "ulid"
	SchemeUUIDv7 = "uuidv7"
)

type Generator interface {
	NewID() (string, error)
}

func New(scheme string) (Generator, error) {
	switch scheme {
	case "", SchemeULID:
		return NewULIDGenerator(), nil
	case SchemeUUIDv7:
		return UUIDv7Generator{}, nil
	default:
		return nil, fmt.Errorf("unsupported id scheme %q", scheme)
	}
}

// ULIDGenerator emits monotonic ULIDs, so ids issued within the same millisecond still sort
// in issue order.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ULIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}

type UUIDv7Generator struct{}

func (UUIDv7Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuidv7: %w", err)
	}
	return id.String(), nil
}
