package serialize

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Typed accessors over a decoded attribute mapping, used by constructors.
// Each fails if the attribute is missing or has the wrong kind.

func attr[T any](attrs map[string]any, name string) (T, error) {
	var zero T
	raw, ok := attrs[name]
	if !ok {
		return zero, fmt.Errorf("missing attribute %q", name)
	}
	v, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("attribute %q has type %T, want %T", name, raw, zero)
	}
	return v, nil
}

func Bool(attrs map[string]any, name string) (bool, error) {
	return attr[bool](attrs, name)
}

func Int64(attrs map[string]any, name string) (int64, error) {
	return attr[int64](attrs, name)
}

func Uint64(attrs map[string]any, name string) (uint64, error) {
	return attr[uint64](attrs, name)
}

func Float64(attrs map[string]any, name string) (float64, error) {
	return attr[float64](attrs, name)
}

func String(attrs map[string]any, name string) (string, error) {
	return attr[string](attrs, name)
}

func Float64Slice(attrs map[string]any, name string) ([]float64, error) {
	return attr[[]float64](attrs, name)
}

func Uint64Slice(attrs map[string]any, name string) ([]uint64, error) {
	return attr[[]uint64](attrs, name)
}

func StringSlice(attrs map[string]any, name string) ([]string, error) {
	return attr[[]string](attrs, name)
}

// Matrix returns a matrix attribute, or nil if the attribute was encoded
// as nil.
func Matrix(attrs map[string]any, name string) (*mat.Dense, error) {
	raw, ok := attrs[name]
	if !ok {
		return nil, fmt.Errorf("missing attribute %q", name)
	}
	if raw == nil {
		return nil, nil
	}
	v, ok := raw.(*mat.Dense)
	if !ok {
		return nil, fmt.Errorf("attribute %q has type %T, want matrix", name, raw)
	}
	return v, nil
}

// Object returns a nested serializable attribute, or nil if the attribute
// was encoded as nil.
func Object(attrs map[string]any, name string) (Serializable, error) {
	raw, ok := attrs[name]
	if !ok {
		return nil, fmt.Errorf("missing attribute %q", name)
	}
	if raw == nil {
		return nil, nil
	}
	v, ok := raw.(Serializable)
	if !ok {
		return nil, fmt.Errorf("attribute %q has type %T, want object", name, raw)
	}
	return v, nil
}

func ObjectList(attrs map[string]any, name string) ([]Serializable, error) {
	return attr[[]Serializable](attrs, name)
}
