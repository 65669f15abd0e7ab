// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider without HAL access.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

var _ gpucontext.DeviceProvider = (*mockProvider)(nil)

// halProvider additionally exposes the underlying HAL handles.
type halProvider struct {
	mockProvider
	device any
	queue  any
}

func (p *halProvider) HalDevice() any { return p.device }
func (p *halProvider) HalQueue() any  { return p.queue }

func TestHALFromProviderNil(t *testing.T) {
	_, _, err := HALFromProvider(nil)
	if !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("expected ErrNoHALAccess, got %v", err)
	}
}

func TestHALFromProviderNoHALMethods(t *testing.T) {
	_, _, err := HALFromProvider(&mockProvider{})
	if !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("expected ErrNoHALAccess, got %v", err)
	}
}

func TestHALFromProviderWrongTypes(t *testing.T) {
	_, _, err := HALFromProvider(&halProvider{device: "nope", queue: "nope"})
	if !errors.Is(err, ErrNoHALAccess) {
		t.Errorf("expected ErrNoHALAccess for non-HAL device, got %v", err)
	}
}

func TestHALFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	gotDevice, gotQueue, err := HALFromProvider(&halProvider{device: device, queue: queue})
	if err != nil {
		t.Fatalf("HALFromProvider failed: %v", err)
	}
	if gotDevice != device {
		t.Error("expected the provider's device back")
	}
	if gotQueue != queue {
		t.Error("expected the provider's queue back")
	}
}
