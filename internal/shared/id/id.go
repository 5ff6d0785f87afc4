// Package id provides identifier generation for the tracker.
//
// Editing-surface handles are prefixed ULIDs. They are minted once per
// surface instantiation and only ever compared by value:
//   - Sortable: a later surface always sorts after an earlier one
//   - Prefixed: "surf_" and "conn_" make logs readable
//   - Typed: SurfaceID and ConnectionID cannot be mixed up
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// SurfaceID identifies one editing-surface instantiation. The zero value
// means "no surface".
type SurfaceID string

// ConnectionID identifies one host bridge connection.
type ConnectionID string

const (
	SurfacePrefix    = "surf"
	ConnectionPrefix = "conn"
	TracePrefix      = "trace"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// entropy, so IDs minted in the same millisecond still sort in mint order.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewSurfaceID mints a surface handle from the default generator
func NewSurfaceID() SurfaceID {
	return NewSurfaceIDFrom(Default())
}

// NewSurfaceIDFrom mints a surface handle from g.
func NewSurfaceIDFrom(g *Generator) SurfaceID {
	return SurfaceID(g.GenerateWithPrefix(SurfacePrefix))
}

// NewConnectionID returns a random connection identifier.
func NewConnectionID() ConnectionID {
	return ConnectionID(ConnectionPrefix + "_" + uuid.NewString())
}

// NewTraceID mints a request trace identifier.
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

func (s SurfaceID) String() string    { return string(s) }
func (c ConnectionID) String() string { return string(c) }

// IsZero reports whether s is the empty handle.
func (s SurfaceID) IsZero() bool { return s == "" }

// ParseSurfaceID validates a handle received from outside the process.
func ParseSurfaceID(raw string) (SurfaceID, error) {
	rest, ok := strings.CutPrefix(raw, SurfacePrefix+"_")
	if !ok {
		return "", fmt.Errorf("surface id %q: missing %q prefix", raw, SurfacePrefix)
	}
	if _, err := ulid.Parse(rest); err != nil {
		return "", fmt.Errorf("surface id %q: %w", raw, err)
	}
	return SurfaceID(raw), nil
}

// Timestamp extracts the mint time from a surface handle.
func Timestamp(s SurfaceID) (time.Time, error) {
	rest, _ := strings.CutPrefix(string(s), SurfacePrefix+"_")
	parsed, err := ulid.Parse(rest)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
