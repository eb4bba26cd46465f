// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"errors"
	"fmt"
)

// ErrEmptySource is wrapped by the Diagnostic returned for blank sources.
var ErrEmptySource = errors.New("shader: empty source")

// Stage names the compilation step that produced a Diagnostic.
type Stage string

const (
	// StageReflect marks errors found while reading the uniform block and
	// resource declarations.
	StageReflect Stage = "reflect"

	// StageCompile marks errors from the WGSL compiler.
	StageCompile Stage = "compile"
)

// Diagnostic is the error returned when a shader fails to compile.
type Diagnostic struct {
	Stage   Stage
	Message string
	Err     error
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("shader: %s: %s", d.Stage, d.Message)
}

// Unwrap returns the underlying compiler error.
func (d *Diagnostic) Unwrap() error { return d.Err }

func newDiagnostic(stage Stage, err error) *Diagnostic {
	msg := err.Error()
	if msg == "" {
		msg = "unknown error"
	}
	return &Diagnostic{Stage: stage, Message: msg, Err: err}
}

// AsDiagnostic extracts a Diagnostic from err.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}
