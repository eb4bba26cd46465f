// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package uniform

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readF32(b []byte, off uint32) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}

func TestNewLayoutOffsets(t *testing.T) {
	l, err := NewLayout([]Decl{
		{"iTime", KindFloat},
		{"iResolution", KindVec2},
		{"brightnessBoost", KindFloat},
		{"textColor", KindVec3},
		{"enableScanlines", KindFloat},
		{"tint", KindVec4},
	})
	require.NoError(t, err)

	want := []Field{
		{"iTime", KindFloat, 0, 4},
		{"iResolution", KindVec2, 8, 8},
		{"brightnessBoost", KindFloat, 16, 4},
		{"textColor", KindVec3, 32, 12},
		{"enableScanlines", KindFloat, 44, 4},
		{"tint", KindVec4, 48, 16},
	}
	assert.Equal(t, want, l.Fields())
	assert.Equal(t, uint32(64), l.Size())
}

func TestNewLayoutRoundsBlockSize(t *testing.T) {
	l, err := NewLayout([]Decl{{"iResolution", KindVec2}})
	require.NoError(t, err)
	assert.Equal(t, uint32(16), l.Size())

	empty, err := NewLayout(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), empty.Size())
}

func TestNewLayoutErrors(t *testing.T) {
	_, err := NewLayout([]Decl{{"a", KindFloat}, {"a", KindVec2}})
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = NewLayout([]Decl{{"flag", KindBool}})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestPackWritesDeclaredFields(t *testing.T) {
	l, err := NewLayout([]Decl{
		{"iTime", KindFloat},
		{"iResolution", KindVec2},
		{"enableScanlines", KindFloat},
	})
	require.NoError(t, err)

	p := l.Pack(Values{
		"iTime":           Float(2.5),
		"iResolution":     Vec2(800, 600),
		"enableScanlines": Bool(true),
	})
	require.True(t, p.Complete())
	require.Len(t, p.Data, 32)
	assert.Equal(t, float32(2.5), readF32(p.Data, 0))
	assert.Equal(t, float32(800), readF32(p.Data, 8))
	assert.Equal(t, float32(600), readF32(p.Data, 12))
	// enableScanlines lands after the vec2 at offset 16, inside a second row.
	f, _ := l.Lookup("enableScanlines")
	assert.Equal(t, uint32(16), f.Offset)
}

// Keys present in configuration but absent from the program's uniform block
// are dropped silently.
func TestPackIgnoresUnknownKeys(t *testing.T) {
	l, err := NewLayout([]Decl{{"iResolution", KindVec2}})
	require.NoError(t, err)

	p := l.Pack(Values{
		"iResolution":            Vec2(320, 200),
		"enableSignalDistortion": Bool(true),
		"brightnessBoost":        Float(1.2),
	})
	assert.True(t, p.Complete())
	assert.Empty(t, p.Missing)
	assert.Empty(t, p.Mismatched)
	assert.Equal(t, float32(320), readF32(p.Data, 0))
}

func TestPackReportsMissingAndMismatched(t *testing.T) {
	l, err := NewLayout([]Decl{
		{"iTime", KindFloat},
		{"iImageResolution", KindVec2},
		{"textColor", KindVec3},
	})
	require.NoError(t, err)

	p := l.Pack(Values{
		"iTime":     Float(1),
		"textColor": Float(1),
	})
	assert.False(t, p.Complete())
	assert.Equal(t, []string{"iImageResolution"}, p.Missing)
	assert.Equal(t, []string{"textColor"}, p.Mismatched)
	assert.Equal(t, float32(0), readF32(p.Data, 16), "mismatched field stays zeroed")
}

func TestNilLayout(t *testing.T) {
	var l *Layout
	assert.Equal(t, uint32(0), l.Size())
	assert.False(t, l.Has("iTime"))
	assert.Nil(t, l.Fields())
	assert.True(t, l.Pack(Values{"iTime": Float(1)}).Complete())
}
