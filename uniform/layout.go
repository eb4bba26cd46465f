// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package uniform

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrDuplicateField is returned when a layout declares the same name twice.
var ErrDuplicateField = errors.New("uniform: duplicate field")

// ErrUnsupportedKind is returned for field kinds that cannot live in a
// uniform block (booleans are not host-shareable; declare them as f32).
var ErrUnsupportedKind = errors.New("uniform: unsupported field kind")

// blockAlign is the size granularity of a uniform buffer binding.
const blockAlign = 16

// Decl declares one field of a uniform block, in declaration order.
type Decl struct {
	Name string
	Kind Kind
}

// Field is a laid-out member of a uniform block.
type Field struct {
	Name   string
	Kind   Kind
	Offset uint32
	Size   uint32
}

// Layout describes a shader program's uniform block: the ordered fields and
// their byte offsets following WGSL uniform address-space rules.
//
// A Layout is immutable after construction.
type Layout struct {
	fields []Field
	index  map[string]int
	size   uint32
}

// NewLayout lays out decls in order. Alignment follows WGSL: f32 aligns to
// 4, vec2<f32> to 8, vec3<f32> and vec4<f32> to 16. The block size is
// rounded up to 16 bytes.
func NewLayout(decls []Decl) (*Layout, error) {
	l := &Layout{
		fields: make([]Field, 0, len(decls)),
		index:  make(map[string]int, len(decls)),
	}
	var offset uint32
	for _, d := range decls {
		if _, dup := l.index[d.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, d.Name)
		}
		align, size, ok := kindLayout(d.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q is %s", ErrUnsupportedKind, d.Name, d.Kind)
		}
		offset = roundUp(offset, align)
		l.index[d.Name] = len(l.fields)
		l.fields = append(l.fields, Field{Name: d.Name, Kind: d.Kind, Offset: offset, Size: size})
		offset += size
	}
	l.size = roundUp(offset, blockAlign)
	return l, nil
}

func kindLayout(k Kind) (align, size uint32, ok bool) {
	switch k {
	case KindFloat:
		return 4, 4, true
	case KindVec2:
		return 8, 8, true
	case KindVec3:
		return 16, 12, true
	case KindVec4:
		return 16, 16, true
	default:
		return 0, 0, false
	}
}

func roundUp(v, align uint32) uint32 {
	return (v + align - 1) / align * align
}

// Size returns the block size in bytes. An empty layout has size 0.
func (l *Layout) Size() uint32 {
	if l == nil {
		return 0
	}
	return l.size
}

// Fields returns the laid-out fields in declaration order.
func (l *Layout) Fields() []Field {
	if l == nil {
		return nil
	}
	return append([]Field(nil), l.fields...)
}

// Lookup returns the field named name.
func (l *Layout) Lookup(name string) (Field, bool) {
	if l == nil {
		return Field{}, false
	}
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// Has reports whether the block declares name.
func (l *Layout) Has(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// accepts reports whether a value of kind vk can be written to a field of
// kind fk. Booleans are written into f32 fields as 0.0 or 1.0.
func accepts(fk, vk Kind) bool {
	if fk == vk {
		return true
	}
	return fk == KindFloat && vk == KindBool
}

// Packed is the result of packing values into a layout.
type Packed struct {
	// Data is the uniform block, Layout.Size bytes long.
	Data []byte

	// Missing lists declared fields with no value, in declaration order.
	Missing []string

	// Mismatched lists declared fields whose value kind does not fit the
	// field. Those fields are left zeroed.
	Mismatched []string
}

// Complete reports whether every declared field received a value.
func (p Packed) Complete() bool {
	return len(p.Missing) == 0 && len(p.Mismatched) == 0
}

// Pack writes values into a new uniform block. Keys the layout does not
// declare are ignored: configuration may carry uniforms that the current
// program does not use.
func (l *Layout) Pack(values Values) Packed {
	if l == nil {
		return Packed{}
	}
	p := Packed{Data: make([]byte, l.size)}
	for _, f := range l.fields {
		v, ok := values[f.Name]
		if !ok {
			p.Missing = append(p.Missing, f.Name)
			continue
		}
		if !accepts(f.Kind, v.Kind()) {
			p.Mismatched = append(p.Mismatched, f.Name)
			continue
		}
		off := f.Offset
		for _, c := range v.Floats() {
			binary.LittleEndian.PutUint32(p.Data[off:off+4], math.Float32bits(c))
			off += 4
		}
	}
	return p
}
