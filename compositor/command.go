// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compositor

import (
	"fmt"

	"github.com/gogpu/crtfx/geom"
)

// Kind identifies a command.
type Kind int

const (
	KindStart Kind = iota + 1
	KindUpdate
	KindStop
	KindDispose
	KindReload
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindUpdate:
		return "update"
	case KindStop:
		return "stop"
	case KindDispose:
		return "dispose"
	case KindReload:
		return "reload"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is a message from the UI side to the render side. Commands are
// plain values; posting one hands it over entirely.
type Command struct {
	Kind     Kind
	Source   string
	Geometry geom.FrameGeometry
}

// Start compiles source on first use, applies g and starts animating.
func Start(source string, g geom.FrameGeometry) Command {
	return Command{Kind: KindStart, Source: source, Geometry: g}
}

// Update replaces the frame geometry.
func Update(g geom.FrameGeometry) Command {
	return Command{Kind: KindUpdate, Geometry: g}
}

// Stop pauses animation.
func Stop() Command { return Command{Kind: KindStop} }

// Dispose tears the visual down for good.
func Dispose() Command { return Command{Kind: KindDispose} }

// Reload recompiles source, keeping the current program on failure.
func Reload(source string) Command {
	return Command{Kind: KindReload, Source: source}
}

func (c Command) String() string {
	switch c.Kind {
	case KindStart, KindUpdate:
		return fmt.Sprintf("%s(shader=%s viewport=%s)", c.Kind, c.Geometry.ShaderSize, c.Geometry.Viewport)
	default:
		return c.Kind.String()
	}
}
