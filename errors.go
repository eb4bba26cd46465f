// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package crtfx

import "errors"

var (
	// ErrNilSource is returned by SetSource when the element is nil.
	ErrNilSource = errors.New("crtfx: source element is nil")

	// ErrSourceAlreadySet is returned by SetSource when a source is bound.
	ErrSourceAlreadySet = errors.New("crtfx: source element already set")

	// ErrAlreadyAttached is returned by Attach on an attached control.
	ErrAlreadyAttached = errors.New("crtfx: control already attached")

	// ErrNotAttached is returned by operations that need a host.
	ErrNotAttached = errors.New("crtfx: control not attached")

	// ErrNilHost is returned by Attach when the host is nil.
	ErrNilHost = errors.New("crtfx: host is nil")
)
