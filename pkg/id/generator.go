package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generate generates a new unique session ID.
func Generate() string {
	return uuid.New().String()
}

// Valid reports whether s is a full session ID as returned by Generate.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// Sequential generates predictable IDs for tests and reproducible runs.
type Sequential struct {
	mu      sync.Mutex
	counter int
	prefix  string
}

// NewSequential creates a generator returning prefix-1, prefix-2, ...
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// Generate returns the next ID.
func (g *Sequential) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
