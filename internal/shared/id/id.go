// Package id provides centralized ID generation for the workshop.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: orders sort by intake time
//   - Prefixed types: type-specific prefixes for debugging (ord_*, sup_*, trc_*)
//   - Type safety: separate types prevent ID misuse
//
// IDs only travel through logs, traces and in-process maps, so the prefix is
// the only structure they carry.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// OrderID identifies one unit of customer demand
type OrderID string

// SupplierID identifies a registered supplier
type SupplierID string

// TraceID identifies the trace of one order through the pipeline
type TraceID string

// SpanID identifies a single span inside a trace
type SpanID string

// ============================================================================
// ID Prefixes
// ============================================================================

const (
	OrderPrefix    = "ord"
	SupplierPrefix = "sup"
	TracePrefix    = "trc"
	SpanPrefix     = "spn"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by a monotonic crypto entropy source
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewOrderID generates a new order ID
func NewOrderID() OrderID {
	return OrderID(Default().GenerateWithPrefix(OrderPrefix))
}

// NewSupplierID generates a new supplier ID
func NewSupplierID() SupplierID {
	return SupplierID(Default().GenerateWithPrefix(SupplierPrefix))
}

// NewTraceID generates a new trace ID
func NewTraceID() TraceID {
	return TraceID(Default().GenerateWithPrefix(TracePrefix))
}

// NewSpanID generates a new span ID
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

func (id OrderID) String() string    { return string(id) }
func (id SupplierID) String() string { return string(id) }
func (id TraceID) String() string    { return string(id) }
func (id SpanID) String() string     { return string(id) }

// ============================================================================
// Validation
// ============================================================================

// IsValid checks if an ID string is a valid ULID, with or without prefix
func IsValid(id string) bool {
	_, err := Parse(id)
	return err == nil
}

// Parse parses a ULID string, stripping a type prefix if present
func Parse(id string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	return ulid.Parse(id)
}

// Timestamp extracts the generation time from an ID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
