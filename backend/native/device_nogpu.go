// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build nogpu

package native

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

func openDevice() (hal.Instance, hal.Device, hal.Queue, error) {
	return nil, nil, nil, fmt.Errorf("%w: built with nogpu", ErrNoDevice)
}
