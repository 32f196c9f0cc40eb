// Package codec packs an entity type and a per-type sequence number into a single
// fixed-width decimal identifier, and decodes identifiers back to their type.
//
// With width L the layout is type × 10^(L−1) + sequence, so for the default
// width of 7 the third judge is 4000003.
package codec

import (
	"fmt"
	"sync"

	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

const (
	DefaultWidth = 7
	MinWidth     = 2
	// MaxWidth keeps type × 10^(L−1) inside int64 for every type code.
	MaxWidth = 18
)

// Codec owns the per-type sequence counters. Counters only move forward for the
// lifetime of the instance; identifiers are never reused, even after removal.
type Codec struct {
	width int
	base  int64

	mu       sync.Mutex
	counters map[id.EntityType]int64
}

// New builds a codec for identifiers of the given decimal width.
func New(width int) (*Codec, error) {
	if width < MinWidth || width > MaxWidth {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("identifier width must be between %d and %d", MinWidth, MaxWidth))
	}
	base := int64(1)
	for i := 1; i < width; i++ {
		base *= 10
	}
	return &Codec{
		width:    width,
		base:     base,
		counters: make(map[id.EntityType]int64, len(id.EntityTypes)),
	}, nil
}

// Width returns the fixed number of decimal digits in every identifier.
func (c *Codec) Width() int { return c.width }

// MaxSequence is the largest sequence number a single type can issue.
func (c *Codec) MaxSequence() int64 { return c.base - 1 }

// Encode packs (typ, seq) into an identifier.
func (c *Codec) Encode(typ id.EntityType, seq int64) (id.EntityID, error) {
	if !typ.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier, fmt.Sprintf("unknown entity type code %d", typ))
	}
	if seq < 1 || seq >= c.base {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier,
			fmt.Sprintf("sequence %d out of range for width %d", seq, c.width))
	}
	return id.EntityID(int64(typ)*c.base + seq), nil
}

// Decode returns the type encoded in the leading digit of an identifier.
func (c *Codec) Decode(entityID id.EntityID) (id.EntityType, error) {
	typ, _, err := c.Split(entityID)
	return typ, err
}

// Split unpacks an identifier into its (type, sequence) pair.
func (c *Codec) Split(entityID id.EntityID) (id.EntityType, int64, error) {
	n := int64(entityID)
	if n <= 0 {
		return 0, 0, dErrors.New(dErrors.CodeInvalidIdentifier, "identifier must be positive")
	}
	code := n / c.base
	typ := id.EntityType(code)
	if code > int64(^uint8(0)) || !typ.IsValid() {
		return 0, 0, dErrors.New(dErrors.CodeInvalidIdentifier,
			fmt.Sprintf("identifier %d does not encode a known entity type", n))
	}
	return typ, n % c.base, nil
}

// Next advances the counter of typ and returns the identifier for the new sequence.
// The first identifier of every type carries sequence 1.
func (c *Codec) Next(typ id.EntityType) (id.EntityID, error) {
	if !typ.IsValid() {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier, fmt.Sprintf("unknown entity type code %d", typ))
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.counters[typ] + 1
	if seq >= c.base {
		return 0, dErrors.New(dErrors.CodeInvalidIdentifier,
			fmt.Sprintf("%s identifier space exhausted", typ))
	}
	c.counters[typ] = seq
	return id.EntityID(int64(typ)*c.base + seq), nil
}

// Release rewinds the counter of entityID's type when entityID is the last
// identifier issued for it, so a registration that failed after Next leaves no
// gap. It reports whether the counter moved.
func (c *Codec) Release(entityID id.EntityID) bool {
	typ, seq, err := c.Split(entityID)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counters[typ] != seq {
		return false
	}
	c.counters[typ] = seq - 1
	return true
}

// Issued returns how many identifiers of typ have been handed out.
func (c *Codec) Issued(typ id.EntityType) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[typ]
}

// Reset rewinds every counter to zero. Only safe on an empty registry.
func (c *Codec) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.counters)
}
