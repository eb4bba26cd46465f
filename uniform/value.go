// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package uniform

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindBool
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindFloat:   "float",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindVec4:    "vec4",
	KindBool:    "bool",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Components returns the number of float components the kind occupies once
// packed. Booleans pack as a single float.
func (k Kind) Components() int {
	switch k {
	case KindFloat, KindBool:
		return 1
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	default:
		return 0
	}
}

// Value is a tagged uniform value. The zero Value is invalid.
type Value struct {
	kind Kind
	v    [4]float32
}

// Float returns a scalar value.
func Float(x float32) Value {
	return Value{kind: KindFloat, v: [4]float32{x}}
}

// Vec2 returns a two-component value.
func Vec2(x, y float32) Value {
	return Value{kind: KindVec2, v: [4]float32{x, y}}
}

// Vec3 returns a three-component value.
func Vec3(x, y, z float32) Value {
	return Value{kind: KindVec3, v: [4]float32{x, y, z}}
}

// Vec4 returns a four-component value.
func Vec4(x, y, z, w float32) Value {
	return Value{kind: KindVec4, v: [4]float32{x, y, z, w}}
}

// Bool returns a boolean value. It packs as 1.0 or 0.0.
func Bool(b bool) Value {
	var f float32
	if b {
		f = 1
	}
	return Value{kind: KindBool, v: [4]float32{f}}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Floats returns the packed float components.
func (v Value) Floats() []float32 {
	return v.v[:v.kind.Components()]
}

// AsFloat returns the first component.
func (v Value) AsFloat() float32 { return v.v[0] }

// AsBool reports whether the first component is non-zero.
func (v Value) AsBool() bool { return v.v[0] != 0 }

func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return strconv.FormatBool(v.AsBool())
	}
	parts := make([]string, 0, 4)
	for _, f := range v.Floats() {
		parts = append(parts, strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	if v.kind == KindFloat {
		return parts[0]
	}
	return fmt.Sprintf("%s(%s)", v.kind, strings.Join(parts, ", "))
}
