package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrEmptyRef = errors.New("domain: empty reference")

// Identifiable is anything a Ref can embed.
type Identifiable interface {
	RefID() string
}

// Ref points at a T either by id or by embedding the whole value. Payloads
// from the roster and older clients use both shapes for the same field.
type Ref[T Identifiable] struct {
	id    string
	value *T
}

// RefByID builds an id reference.
func RefByID[T Identifiable](id string) Ref[T] {
	return Ref[T]{id: id}
}

// RefEmbedded builds an embedded reference.
func RefEmbedded[T Identifiable](v T) Ref[T] {
	return Ref[T]{value: &v}
}

// IsZero reports whether the reference is absent.
func (r Ref[T]) IsZero() bool { return r.id == "" && r.value == nil }

// Embedded returns the embedded value, if any.
func (r Ref[T]) Embedded() (T, bool) {
	if r.value == nil {
		var zero T
		return zero, false
	}
	return *r.value, true
}

// ID normalizes the reference to the referenced id, whichever shape it came in.
func (r Ref[T]) ID() (string, error) {
	if r.value != nil {
		if id := (*r.value).RefID(); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("%w: embedded value has no id", ErrEmptyRef)
	}
	if r.id == "" {
		return "", ErrEmptyRef
	}
	return r.id, nil
}

// UnmarshalJSON accepts a string id, an embedded object, or null.
func (r *Ref[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref[T]{}

	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		return json.Unmarshal(b, &r.id)
	case b[0] == '{':
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("domain: decode embedded reference: %w", err)
		}
		r.value = &v
		return nil
	}
	return fmt.Errorf("domain: reference must be a string id or an object, got %s", b)
}

// MarshalJSON writes the shape the reference was built with.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	switch {
	case r.value != nil:
		return json.Marshal(*r.value)
	case r.id != "":
		return json.Marshal(r.id)
	}
	return []byte("null"), nil
}
