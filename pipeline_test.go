// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"errors"
	"testing"
)

func TestNewSpritePipelineNilDevice(t *testing.T) {
	_, err := NewSpritePipeline(nil, PipelineConfig{})
	if !errors.Is(err, ErrNilDevice) {
		t.Errorf("expected ErrNilDevice, got %v", err)
	}
}

func TestNewSpritePipeline(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	p := createTestPipeline(t, device)
	defer p.Destroy()

	if p.RenderPipeline() == nil {
		t.Error("expected non-nil render pipeline")
	}
	if p.shader == nil || p.bindLayout == nil || p.pipeLayout == nil || p.sampler == nil {
		t.Error("expected all pipeline resources created")
	}
}

func TestSpritePipelineBindGroupCache(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := createTestPipeline(t, device)
	defer p.Destroy()

	texA := createTestTexture(t, device, queue, "a")
	defer texA.Close()
	texB := createTestTexture(t, device, queue, "b")
	defer texB.Close()

	bgA1, err := p.bindGroupFor(texA)
	if err != nil {
		t.Fatalf("bindGroupFor A failed: %v", err)
	}
	bgA2, err := p.bindGroupFor(texA)
	if err != nil {
		t.Fatalf("second bindGroupFor A failed: %v", err)
	}
	if bgA1 != bgA2 {
		t.Error("expected cached bind group on repeat lookup")
	}

	bgB, err := p.bindGroupFor(texB)
	if err != nil {
		t.Fatalf("bindGroupFor B failed: %v", err)
	}
	if bgB == nil {
		t.Fatal("expected a bind group for texture B")
	}
	// Handle values may collide on zero-size backend allocations, so each
	// texture's entry is checked through the cache itself.
	if len(p.bindGroups) != 2 {
		t.Errorf("expected 2 cached bind groups, got %d", len(p.bindGroups))
	}
	if p.bindGroups[texA] != bgA1 || p.bindGroups[texB] != bgB {
		t.Error("cache entries do not match the returned bind groups")
	}
}

func TestSpritePipelineBindGroupValidation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := createTestPipeline(t, device)
	defer p.Destroy()

	if _, err := p.bindGroupFor(nil); !errors.Is(err, ErrNilTexture) {
		t.Errorf("nil texture: expected ErrNilTexture, got %v", err)
	}

	tex := createTestTexture(t, device, queue, "closed")
	tex.Close()
	if _, err := p.bindGroupFor(tex); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("released texture: expected ErrTextureReleased, got %v", err)
	}
}

func TestSpritePipelineInvalidateTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := createTestPipeline(t, device)
	defer p.Destroy()

	tex := createTestTexture(t, device, queue, "a")
	defer tex.Close()

	if _, err := p.bindGroupFor(tex); err != nil {
		t.Fatalf("bindGroupFor failed: %v", err)
	}
	p.InvalidateTexture(tex)
	if len(p.bindGroups) != 0 {
		t.Errorf("expected empty bind group cache after invalidate, got %d", len(p.bindGroups))
	}

	// Invalidating an unknown texture is a no-op.
	p.InvalidateTexture(tex)
}

func TestSpritePipelineDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := createTestPipeline(t, device)
	tex := createTestTexture(t, device, queue, "a")
	defer tex.Close()

	if _, err := p.bindGroupFor(tex); err != nil {
		t.Fatalf("bindGroupFor failed: %v", err)
	}

	p.Destroy()
	p.Destroy() // idempotent

	if p.RenderPipeline() != nil {
		t.Error("expected nil render pipeline after destroy")
	}
	if _, err := p.bindGroupFor(tex); !errors.Is(err, ErrPipelineDestroyed) {
		t.Errorf("bindGroupFor after destroy: expected ErrPipelineDestroyed, got %v", err)
	}
}

func TestCompileShader(t *testing.T) {
	spirv, err := compileShader(spriteShaderSource)
	if err != nil {
		t.Fatalf("compileShader failed: %v", err)
	}
	if len(spirv) == 0 {
		t.Fatal("expected non-empty SPIR-V output")
	}
	// SPIR-V modules start with the magic number 0x07230203.
	if spirv[0] != 0x07230203 {
		t.Errorf("bad SPIR-V magic: got %#x", spirv[0])
	}
}
