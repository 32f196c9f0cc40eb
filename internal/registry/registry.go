// Package registry is the single source of truth for "does entity X exist".
// It keeps one ordered index per entity type, keyed by identifier.
package registry

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"courthouse/internal/sentinel"
	id "courthouse/pkg/domain"
)

// btreeDegree trades node fan-out for depth; 32 is the value google/btree
// benchmarks around and keeps lookups well under a microsecond at our sizes.
const btreeDegree = 32

var (
	// ErrNotFound is returned when no entity is registered under an id.
	ErrNotFound = sentinel.ErrNotFound
	// ErrDuplicate is returned when an id is already registered.
	ErrDuplicate = sentinel.ErrAlreadyUsed
)

// Entity is anything the registry can own.
type Entity interface {
	EntityID() id.EntityID
}

// Decoder resolves the type encoded in an identifier.
type Decoder interface {
	Decode(entityID id.EntityID) (id.EntityType, error)
}

// probe is a lookup key for the ordered indexes.
type probe id.EntityID

func (p probe) EntityID() id.EntityID { return id.EntityID(p) }

func lessByID(a, b Entity) bool { return a.EntityID() < b.EntityID() }

// Registry stores entities by type. Iteration within a type is by ascending id,
// which is also registration order because ids are monotonic per type.
type Registry struct {
	decoder Decoder

	mu      sync.RWMutex
	indexes map[id.EntityType]*btree.BTreeG[Entity]
}

// New creates an empty registry that decodes ids with the given codec.
func New(decoder Decoder) *Registry {
	indexes := make(map[id.EntityType]*btree.BTreeG[Entity], len(id.EntityTypes))
	for _, typ := range id.EntityTypes {
		indexes[typ] = btree.NewG(btreeDegree, lessByID)
	}
	return &Registry{decoder: decoder, indexes: indexes}
}

// Register inserts e into the index of the type encoded in its id.
func (r *Registry) Register(e Entity) error {
	if e == nil {
		return fmt.Errorf("register nil entity: %w", sentinel.ErrInvalidInput)
	}
	typ, err := r.decoder.Decode(e.EntityID())
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	index := r.indexes[typ]
	if index.Has(probe(e.EntityID())) {
		return fmt.Errorf("%s %s already registered: %w", typ, e.EntityID(), ErrDuplicate)
	}
	index.ReplaceOrInsert(e)
	return nil
}

// Lookup returns the entity registered under entityID.
func (r *Registry) Lookup(entityID id.EntityID) (Entity, error) {
	typ, err := r.decoder.Decode(entityID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.indexes[typ].Get(probe(entityID)); ok {
		return e, nil
	}
	return nil, ErrNotFound
}

// Contains reports whether entityID is registered. Malformed ids are simply absent.
func (r *Registry) Contains(entityID id.EntityID) bool {
	_, err := r.Lookup(entityID)
	return err == nil
}

// Remove deletes entityID and returns its decoded type, so callers can detach
// it from lanes and pools the registry does not own.
func (r *Registry) Remove(entityID id.EntityID) (id.EntityType, error) {
	typ, err := r.decoder.Decode(entityID)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.indexes[typ].Delete(probe(entityID)); !ok {
		return typ, ErrNotFound
	}
	return typ, nil
}

// Count returns the number of registered entities of typ.
func (r *Registry) Count(typ id.EntityType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, ok := r.indexes[typ]
	if !ok {
		return 0
	}
	return index.Len()
}

// Each visits entities of typ in ascending id order until fn returns false.
// fn runs under the read lock and must not call back into the registry.
func (r *Registry) Each(typ id.EntityType, fn func(Entity) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	index, ok := r.indexes[typ]
	if !ok {
		return
	}
	index.Ascend(btree.ItemIteratorG[Entity](fn))
}

// List returns a snapshot of every entity of typ in ascending id order.
func (r *Registry) List(typ id.EntityType) []Entity {
	out := make([]Entity, 0, r.Count(typ))
	r.Each(typ, func(e Entity) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Get is a typed Lookup. An entity of a different Go type is reported as not found.
func Get[T Entity](r *Registry, entityID id.EntityID) (T, error) {
	var zero T
	e, err := r.Lookup(entityID)
	if err != nil {
		return zero, err
	}
	typed, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("entity %s has type %T: %w", entityID, e, ErrNotFound)
	}
	return typed, nil
}

// ListAs returns the entities of typ that are of Go type T, in ascending id order.
func ListAs[T Entity](r *Registry, typ id.EntityType) []T {
	var out []T
	r.Each(typ, func(e Entity) bool {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
		return true
	})
	return out
}
