package strobe

import (
	"fmt"
	"maps"
	"slices"
)

// Params is the configuration bag handed to algorithm builders and
// descriptor sets: option name to value. Validation against a Schema
// happens at construction time, never during execution.
type Params map[string]any

// Int reads an integer option, accepting float64 for values that arrived
// through YAML/JSON decoding.
func (p Params) Int(key string, def int) int {
	v, found := p[key]
	if !found {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Float reads a float option, accepting integer values.
func (p Params) Float(key string, def float64) float64 {
	v, found := p[key]
	if !found {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// String reads a string option.
func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// Bool reads a boolean option.
func (p Params) Bool(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// ParamKind is the declared type of an option.
type ParamKind int

const (
	KindInt ParamKind = iota
	KindFloat
	KindString
	KindBool
)

func (k ParamKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParamSpec declares one recognized option: its kind, an optional numeric
// range (Min/Max apply when HasRange), and an optional enum of allowed
// string values.
type ParamSpec struct {
	Name     string
	Kind     ParamKind
	HasRange bool
	Min, Max float64
	Enum     []string
	Default  any
}

// Schema is the set of options an algorithm or descriptor set recognizes.
type Schema []ParamSpec

// Validate rejects unrecognized options, wrong kinds, out-of-range
// numbers, and strings outside a declared enum. All failures wrap
// ErrInvalidConfiguration.
func (s Schema) Validate(p Params) error {
	specs := make(map[string]ParamSpec, len(s))
	for _, spec := range s {
		specs[spec.Name] = spec
	}

	keys := slices.Sorted(maps.Keys(p))
	for _, key := range keys {
		spec, found := specs[key]
		if !found {
			return fmt.Errorf("%w: unrecognized option %q", ErrInvalidConfiguration, key)
		}
		if err := spec.check(p[key]); err != nil {
			return err
		}
	}
	return nil
}

// Apply validates p and returns a copy with declared defaults filled in.
func (s Schema) Apply(p Params) (Params, error) {
	if err := s.Validate(p); err != nil {
		return nil, err
	}
	out := p.Clone()
	for _, spec := range s {
		if _, found := out[spec.Name]; !found && spec.Default != nil {
			out[spec.Name] = spec.Default
		}
	}
	return out, nil
}

func (spec ParamSpec) check(v any) error {
	switch spec.Kind {
	case KindInt:
		n, ok := asNumber(v)
		if !ok || n != float64(int64(n)) {
			return fmt.Errorf("%w: option %q expects int, got %v (%T)",
				ErrInvalidConfiguration, spec.Name, v, v)
		}
		return spec.checkRange(n)
	case KindFloat:
		n, ok := asNumber(v)
		if !ok {
			return fmt.Errorf("%w: option %q expects float, got %v (%T)",
				ErrInvalidConfiguration, spec.Name, v, v)
		}
		return spec.checkRange(n)
	case KindString:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: option %q expects string, got %T",
				ErrInvalidConfiguration, spec.Name, v)
		}
		if len(spec.Enum) > 0 && !slices.Contains(spec.Enum, str) {
			return fmt.Errorf("%w: option %q must be one of %v, got %q",
				ErrInvalidConfiguration, spec.Name, spec.Enum, str)
		}
		return nil
	case KindBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: option %q expects bool, got %T",
				ErrInvalidConfiguration, spec.Name, v)
		}
		return nil
	default:
		return fmt.Errorf("%w: option %q has unknown kind", ErrInvalidConfiguration, spec.Name)
	}
}

func (spec ParamSpec) checkRange(n float64) error {
	if !spec.HasRange {
		return nil
	}
	if n < spec.Min || n > spec.Max {
		return fmt.Errorf("%w: option %q out of range [%v, %v]: %v",
			ErrInvalidConfiguration, spec.Name, spec.Min, spec.Max, n)
	}
	return nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
