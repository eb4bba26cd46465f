// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/gogpu/crtfx/uniform"
	"github.com/pelletier/go-toml/v2"
)

// Uniform names driven by Appearance.
const (
	UniformBrightnessBoost        = "brightnessBoost"
	UniformEnableScanlines        = "enableScanlines"
	UniformEnableSurround         = "enableSurround"
	UniformEnableSignalDistortion = "enableSignalDistortion"
	UniformEnableShadows          = "enableShadows"
)

// Appearance is the look of a CRT visual as configured by the host UI.
// Colours and font size are never interpreted here.
type Appearance struct {
	Foreground string  `toml:"foreground" yaml:"foreground"`
	Background string  `toml:"background" yaml:"background"`
	Selection  string  `toml:"selection" yaml:"selection"`
	FontSize   float64 `toml:"font_size" yaml:"font_size"`

	BrightnessBoost        float64 `toml:"brightness_boost" yaml:"brightness_boost"`
	EnableScanlines        bool    `toml:"enable_scanlines" yaml:"enable_scanlines"`
	EnableSurround         bool    `toml:"enable_surround" yaml:"enable_surround"`
	EnableSignalDistortion bool    `toml:"enable_signal_distortion" yaml:"enable_signal_distortion"`
	EnableShadows          bool    `toml:"enable_shadows" yaml:"enable_shadows"`
}

// Uniforms maps the effect settings 1:1 onto uniform values.
func (a Appearance) Uniforms() uniform.Values {
	return uniform.Values{
		UniformBrightnessBoost:        uniform.Float(float32(a.BrightnessBoost)),
		UniformEnableScanlines:        uniform.Bool(a.EnableScanlines),
		UniformEnableSurround:         uniform.Bool(a.EnableSurround),
		UniformEnableSignalDistortion: uniform.Bool(a.EnableSignalDistortion),
		UniformEnableShadows:          uniform.Bool(a.EnableShadows),
	}
}

//go:embed skins.toml
var skinsTOML []byte

var skins map[string]Appearance

func init() {
	if err := toml.Unmarshal(skinsTOML, &skins); err != nil {
		panic(fmt.Sprintf("crtfx: embedded skins: %v", err))
	}
}

// Skin returns a built-in appearance preset by name.
func Skin(name string) (Appearance, bool) {
	a, ok := skins[name]
	return a, ok
}

// MustSkin is like Skin but panics on an unknown name.
func MustSkin(name string) Appearance {
	a, ok := Skin(name)
	if !ok {
		panic(fmt.Sprintf("crtfx: unknown skin %q", name))
	}
	return a
}

// SkinNames lists the built-in presets in sorted order.
func SkinNames() []string {
	names := make([]string, 0, len(skins))
	for n := range skins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
