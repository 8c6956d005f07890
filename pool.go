package strobe

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

type entryMode int

const (
	modeSingle entryMode = iota
	modeAppend
)

func (m entryMode) String() string {
	if m == modeSingle {
		return "single-value"
	}
	return "append"
}

type poolEntry struct {
	mode   entryMode
	typ    reflect.Type
	single any
	values []any
}

// Pool accumulates descriptor values under hierarchical, dot-separated
// string keys. Hierarchy is a naming convention only; keys are opaque and
// case-sensitive. A key is either single-value (Set overwrites) or
// multi-value (Add appends), decided by its first write and fixed for the
// pool's lifetime. Values under one key share one concrete type.
//
// Within one run only sink nodes write, in scheduler order; the lock
// exists so independent sub-graphs may share a pool when a caller chooses
// to run them from separate goroutines.
type Pool struct {
	mu      sync.RWMutex
	entries map[string]*poolEntry
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{entries: map[string]*poolEntry{}}
}

// Set establishes or overwrites a single-value entry.
func (p *Pool) Set(key string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, found := p.entries[key]
	if !found {
		p.entries[key] = &poolEntry{
			mode:   modeSingle,
			typ:    reflect.TypeOf(value),
			single: value,
		}
		return nil
	}
	if e.mode != modeSingle {
		return fmt.Errorf("%w: key %q is %s, Set requires single-value",
			ErrModeConflict, key, e.mode)
	}
	if err := e.checkType(key, value); err != nil {
		return err
	}
	e.single = value
	return nil
}

// Add appends to a multi-value entry.
func (p *Pool) Add(key string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, found := p.entries[key]
	if !found {
		p.entries[key] = &poolEntry{
			mode:   modeAppend,
			typ:    reflect.TypeOf(value),
			values: []any{value},
		}
		return nil
	}
	if e.mode != modeAppend {
		return fmt.Errorf("%w: key %q is %s, Add requires append",
			ErrModeConflict, key, e.mode)
	}
	if err := e.checkType(key, value); err != nil {
		return err
	}
	e.values = append(e.values, value)
	return nil
}

// Get returns a single-value entry's value, or a copy of a multi-value
// entry's accumulated values as []any.
func (p *Pool) Get(key string) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, found := p.entries[key]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if e.mode == modeSingle {
		return e.single, nil
	}
	return slices.Clone(e.values), nil
}

// Contains reports whether the key has been written.
func (p *Pool) Contains(key string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, found := p.entries[key]
	return found
}

// Remove drops a key. Removing an absent key is a no-op.
func (p *Pool) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, key)
}

// Keys returns all keys, sorted.
func (p *Pool) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.entries))
	for k := range p.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// KeysWithPrefix returns all keys under a namespace prefix, sorted. The
// prefix matches whole path segments: "tonal" matches "tonal.key" but not
// "tonality.x".
func (p *Pool) KeysWithPrefix(prefix string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var keys []string
	for k := range p.entries {
		if k == prefix || strings.HasPrefix(k, prefix+".") {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Len reports the number of keys.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Merge combines other into p. Disjoint keys are unioned; a key present
// in both must agree on mode and type, with appended values concatenated
// (p's first) and single values overwritten by other's.
func (p *Pool) Merge(other *Pool) error {
	if other == nil || other == p {
		return nil
	}

	other.mu.RLock()
	defer other.mu.RUnlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	// Validate the whole union before mutating anything, so a conflict
	// cannot leave a half-merged pool.
	for key, oe := range other.entries {
		e, found := p.entries[key]
		if !found {
			continue
		}
		if e.mode != oe.mode {
			return fmt.Errorf("%w: key %q is %s here, %s in merged pool",
				ErrModeConflict, key, e.mode, oe.mode)
		}
		if e.typ != oe.typ {
			return fmt.Errorf("%w: key %q holds %s here, %s in merged pool",
				ErrTypeMismatch, key, e.typ, oe.typ)
		}
	}

	for key, oe := range other.entries {
		e, found := p.entries[key]
		if !found {
			p.entries[key] = &poolEntry{
				mode:   oe.mode,
				typ:    oe.typ,
				single: oe.single,
				values: slices.Clone(oe.values),
			}
			continue
		}
		if e.mode == modeSingle {
			e.single = oe.single
		} else {
			e.values = append(e.values, oe.values...)
		}
	}
	return nil
}

func (e *poolEntry) checkType(key string, value any) error {
	t := reflect.TypeOf(value)
	if e.typ != nil && t != e.typ {
		return fmt.Errorf("%w: key %q holds %s, got %s",
			ErrTypeMismatch, key, e.typ, t)
	}
	return nil
}

// Values returns a multi-value entry's accumulated values converted to
// their concrete type. It fails with ModeConflict on a single-value key.
func Values[T any](p *Pool, key string) ([]T, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, found := p.entries[key]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if e.mode != modeAppend {
		return nil, fmt.Errorf("%w: key %q is %s", ErrModeConflict, key, e.mode)
	}
	out := make([]T, len(e.values))
	for i, v := range e.values {
		tv, ok := v.(T)
		if !ok {
			return nil, fmt.Errorf("%w: key %q holds %s", ErrTypeMismatch, key, e.typ)
		}
		out[i] = tv
	}
	return out, nil
}

// Value returns a single-value entry's value converted to its concrete
// type. It fails with ModeConflict on an append-mode key.
func Value[T any](p *Pool, key string) (T, error) {
	var zero T

	p.mu.RLock()
	defer p.mu.RUnlock()

	e, found := p.entries[key]
	if !found {
		return zero, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	if e.mode != modeSingle {
		return zero, fmt.Errorf("%w: key %q is %s", ErrModeConflict, key, e.mode)
	}
	tv, ok := e.single.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %s", ErrTypeMismatch, key, e.typ)
	}
	return tv, nil
}
