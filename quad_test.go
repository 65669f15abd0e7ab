// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// createTestTexture creates a small texture for batching tests.
func createTestTexture(t *testing.T, device hal.Device, queue hal.Queue, label string) *Texture {
	t.Helper()
	tex, err := CreateTexture(device, queue, TextureConfig{Width: 16, Height: 16, Label: label})
	if err != nil {
		t.Fatalf("CreateTexture(%q) failed: %v", label, err)
	}
	return tex
}

// createTestPipeline creates a sprite pipeline on the noop device.
func createTestPipeline(t *testing.T, device hal.Device) *SpritePipeline {
	t.Helper()
	p, err := NewSpritePipeline(device, PipelineConfig{})
	if err != nil {
		t.Fatalf("NewSpritePipeline failed: %v", err)
	}
	return p
}
