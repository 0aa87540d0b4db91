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

package optional

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOption_IsNone(t *testing.T) {
	assert.True(t, None[int]().IsNone())
	assert.False(t, Some(123).IsNone())
	var zero Option[int]
	assert.True(t, zero.IsNone())
}

func TestOption_IsSome(t *testing.T) {
	assert.False(t, None[int]().IsSome())
	assert.True(t, Some(123).IsSome())
	assert.True(t, Some(0).IsSome())
}

func TestOption_Unwrap(t *testing.T) {
	assert.Equal(t, "foo", Some("foo").Unwrap())
	assert.Equal(t, "", None[string]().Unwrap())
	assert.Nil(t, None[*string]().Unwrap())
}

func TestOption_Take(t *testing.T) {
	v, ok := Some(123).Take()
	assert.True(t, ok)
	assert.Equal(t, 123, v)

	v, ok = None[int]().Take()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestOption_TakeOr(t *testing.T) {
	assert.Equal(t, 123, Some(123).TakeOr(666))
	assert.Equal(t, 666, None[int]().TakeOr(666))
	assert.Equal(t, 666, None[int]().TakeOrElse(func() int { return 666 }))
}

func TestOption_Filter(t *testing.T) {
	isEven := func(v int) bool {
		return v%2 == 0
	}

	assert.True(t, Some(2).Filter(isEven).IsSome())
	assert.True(t, Some(1).Filter(isEven).IsNone())
	assert.True(t, None[int]().Filter(isEven).IsNone())
}

func TestOption_Equality(t *testing.T) {
	assert.True(t, Some(1) == Some(1))
	assert.False(t, Some(1) == Some(2))
	assert.False(t, Some(0) == None[int]())
	assert.True(t, None[int]() == None[int]())
}

func TestOption_IfSome(t *testing.T) {
	callingValue := ""
	Some("foo").IfSome(func(s string) {
		callingValue = s
	})
	assert.Equal(t, "foo", callingValue)

	callingValue = ""
	None[string]().IfSome(func(s string) {
		callingValue = s
	})
	assert.Equal(t, "", callingValue)

	err := Some("foo").IfSomeWithError(func(s string) error {
		return errors.New(s)
	})
	assert.EqualError(t, err, "foo")
	assert.NoError(t, None[string]().IfSomeWithError(func(s string) error {
		return errors.New(s)
	}))
}

func TestOption_IfNone(t *testing.T) {
	called := false
	None[string]().IfNone(func() {
		called = true
	})
	assert.True(t, called)

	called = false
	Some("string").IfNone(func() {
		called = true
	})
	assert.False(t, called)
}

func TestMap(t *testing.T) {
	mapped := Map(Some(123), func(v int) string {
		return fmt.Sprintf("%d", v)
	})
	taken, ok := mapped.Take()
	assert.True(t, ok)
	assert.Equal(t, "123", taken)

	assert.True(t, Map(None[int](), func(v int) string { return "x" }).IsNone())
	assert.Equal(t, "666", MapOr(None[int](), "666", func(v int) string { return "x" }))
}

func TestFlatMap(t *testing.T) {
	positive := func(v int) Option[int] {
		if v > 0 {
			return Some(v)
		}
		return None[int]()
	}
	assert.Equal(t, Some(3), FlatMap(Some(3), positive))
	assert.True(t, FlatMap(Some(-3), positive).IsNone())
	assert.True(t, FlatMap(None[int](), positive).IsNone())
}

func TestFromPointer(t *testing.T) {
	v := 7
	assert.Equal(t, Some(7), FromPointer(&v))
	assert.True(t, FromPointer[int](nil).IsNone())
}

func TestOption_String(t *testing.T) {
	assert.Equal(t, "42", Some(42).String())
	assert.Equal(t, "<none>", None[int]().String())
}

func TestOption_JSON(t *testing.T) {
	type payload struct {
		A Option[int] `json:"a"`
		B Option[int] `json:"b"`
		C Option[int] `json:"c"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"a": 0, "b": null}`), &p))
	assert.Equal(t, Some(0), p.A)
	assert.True(t, p.B.IsNone())
	assert.True(t, p.C.IsNone())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 0, "b": null, "c": null}`, string(out))

	var bad Option[int]
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}
