/*
Copyright 2021 Arun Muralidharan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

*/

// Package optional provides an explicit "maybe absent" value type. Absent
// and zero are different states: None[int]() is not Some(0).
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Option holds either a value (Some) or nothing (None). The zero Option is None.
// Option is comparable whenever T is, so two options are == iff both are None
// or both hold == values.
type Option[T any] struct {
	value  T
	exists bool
}

// Some wraps v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, exists: true}
}

// None returns the absent value for T.
func None[T any]() Option[T] {
	return Option[T]{}
}

// FromPointer maps nil to None and anything else to Some(*p).
func FromPointer[T any](p *T) Option[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Option[T]) IsSome() bool {
	return o.exists
}

func (o Option[T]) IsNone() bool {
	return !o.exists
}

// Unwrap returns the held value, or the zero value of T when absent.
func (o Option[T]) Unwrap() T {
	return o.value
}

// Take returns the held value and whether one was present.
func (o Option[T]) Take() (T, bool) {
	return o.value, o.exists
}

func (o Option[T]) TakeOr(fallback T) T {
	if !o.exists {
		return fallback
	}
	return o.value
}

func (o Option[T]) TakeOrElse(fallback func() T) T {
	if !o.exists {
		return fallback()
	}
	return o.value
}

// Filter keeps the value only if predicate holds for it.
func (o Option[T]) Filter(predicate func(v T) bool) Option[T] {
	if !o.exists || !predicate(o.value) {
		return None[T]()
	}
	return o
}

func (o Option[T]) IfSome(f func(v T)) {
	if o.exists {
		f(o.value)
	}
}

func (o Option[T]) IfSomeWithError(f func(v T) error) error {
	if o.exists {
		return f(o.value)
	}
	return nil
}

func (o Option[T]) IfNone(f func()) {
	if !o.exists {
		f()
	}
}

// String renders the held value with %v, or "<none>" when absent.
func (o Option[T]) String() string {
	if !o.exists {
		return "<none>"
	}
	return fmt.Sprintf("%v", o.value)
}

// MarshalJSON writes null for None.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.exists {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON reads null as None.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Map applies mapper to a present value.
func Map[T, U any](o Option[T], mapper func(v T) U) Option[U] {
	if !o.exists {
		return None[U]()
	}
	return Some(mapper(o.value))
}

func MapOr[T, U any](o Option[T], fallback U, mapper func(v T) U) U {
	if !o.exists {
		return fallback
	}
	return mapper(o.value)
}

// FlatMap applies a mapper that may itself produce None.
func FlatMap[T, U any](o Option[T], mapper func(v T) Option[U]) Option[U] {
	if !o.exists {
		return None[U]()
	}
	return mapper(o.value)
}
