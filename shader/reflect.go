// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/crtfx/uniform"
)

// ImageName is the texture binding a program declares to receive the
// captured source element.
const ImageName = "iImage1"

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	attribute    = regexp.MustCompile(`@\w+(\s*\([^)]*\))?`)

	uniformVar = regexp.MustCompile(`((?:@\w+\s*\([^)]*\)\s*)*)var\s*<\s*uniform\s*>\s*(\w+)\s*:\s*(\w+)\s*;`)
	structDecl = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	memberDecl = regexp.MustCompile(`^\s*(\w+)\s*:\s*([\w<>\s]+?)\s*$`)
	imageVar   = regexp.MustCompile(`((?:@\w+\s*\([^)]*\)\s*)*)var\s+` + ImageName + `\s*:\s*texture_2d\s*<\s*f32\s*>`)
	groupAttr  = regexp.MustCompile(`@group\s*\(\s*(\d+)\s*\)`)
	bindAttr   = regexp.MustCompile(`@binding\s*\(\s*(\d+)\s*\)`)
	layoutAttr = regexp.MustCompile(`@(align|size)\b`)
	entryPoint = regexp.MustCompile(`fn\s+fs_main\s*\(`)
)

var (
	errMultipleUniforms = errors.New("more than one var<uniform> declaration")
	errNoEntryPoint     = errors.New("missing fragment entry point fs_main")
)

// Reflection is what a program declares besides its code.
type Reflection struct {
	// Block is the struct type name of the uniform block, empty if none.
	Block string

	// Decls lists the uniform block members in declaration order.
	Decls []uniform.Decl

	// HasImage reports whether iImage1 is declared.
	HasImage bool
}

// Reflect scans WGSL source for the uniform block and the image binding.
func Reflect(source string) (Reflection, error) {
	src := stripComments(source)

	var r Reflection
	if !entryPoint.MatchString(src) {
		return r, errNoEntryPoint
	}
	if m := imageVar.FindStringSubmatch(src); m != nil {
		if err := checkBinding(ImageName, m[1], 1); err != nil {
			return r, err
		}
		r.HasImage = true
	}

	vars := uniformVar.FindAllStringSubmatch(src, -1)
	switch len(vars) {
	case 0:
		return r, nil
	case 1:
	default:
		return r, errMultipleUniforms
	}
	if err := checkBinding("var<uniform> "+vars[0][2], vars[0][1], 0); err != nil {
		return r, err
	}
	r.Block = vars[0][3]

	var body string
	found := false
	for _, m := range structDecl.FindAllStringSubmatch(src, -1) {
		if m[1] == r.Block {
			body, found = m[2], true
			break
		}
	}
	if !found {
		return r, fmt.Errorf("uniform block type %q is not a struct in this module", r.Block)
	}

	decls, err := parseMembers(body)
	if err != nil {
		return r, fmt.Errorf("struct %s: %w", r.Block, err)
	}
	r.Decls = decls
	return r, nil
}

// checkBinding requires attrs to place a variable at @group(0)
// @binding(binding), where the render pipeline binds it.
func checkBinding(name, attrs string, binding int) error {
	want := fmt.Sprintf("@group(0) @binding(%d)", binding)
	g := groupAttr.FindStringSubmatch(attrs)
	b := bindAttr.FindStringSubmatch(attrs)
	if g == nil || b == nil || g[1] != "0" || b[1] != strconv.Itoa(binding) {
		return fmt.Errorf("%s must be declared at %s", name, want)
	}
	return nil
}

func stripComments(src string) string {
	src = blockComment.ReplaceAllString(src, " ")
	return lineComment.ReplaceAllString(src, "")
}

func parseMembers(body string) ([]uniform.Decl, error) {
	if m := layoutAttr.FindStringSubmatch(body); m != nil {
		return nil, fmt.Errorf("member attribute @%s is not supported; members use default uniform layout", m[1])
	}
	body = attribute.ReplaceAllString(body, "")
	var decls []uniform.Decl
	for _, part := range strings.Split(body, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m := memberDecl.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("cannot parse member %q", strings.TrimSpace(part))
		}
		kind, ok := kindOf(m[2])
		if !ok {
			return nil, fmt.Errorf("member %s has unsupported type %s", m[1], strings.TrimSpace(m[2]))
		}
		decls = append(decls, uniform.Decl{Name: m[1], Kind: kind})
	}
	return decls, nil
}

func kindOf(typ string) (uniform.Kind, bool) {
	switch strings.Join(strings.Fields(typ), "") {
	case "f32":
		return uniform.KindFloat, true
	case "vec2<f32>", "vec2f":
		return uniform.KindVec2, true
	case "vec3<f32>", "vec3f":
		return uniform.KindVec3, true
	case "vec4<f32>", "vec4f":
		return uniform.KindVec4, true
	default:
		return uniform.KindInvalid, false
	}
}
