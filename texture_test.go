// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestCreateTextureValidation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name   string
		config TextureConfig
	}{
		{"zero width", TextureConfig{Width: 0, Height: 16}},
		{"zero height", TextureConfig{Width: 16, Height: 0}},
		{"negative width", TextureConfig{Width: -1, Height: 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTexture(device, queue, tt.config)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("expected ErrInvalidDimensions, got %v", err)
			}
		})
	}
}

func TestCreateTexture(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tex, err := CreateTexture(device, queue, TextureConfig{Width: 32, Height: 16, Label: "test"})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer tex.Close()

	if tex.Width() != 32 || tex.Height() != 16 {
		t.Errorf("expected 32x16, got %dx%d", tex.Width(), tex.Height())
	}
	if tex.Label() != "test" {
		t.Errorf("expected label %q, got %q", "test", tex.Label())
	}
	if tex.View() == nil {
		t.Error("expected non-nil view")
	}
	if tex.Released() {
		t.Error("expected new texture not released")
	}
	if want := uint64(32 * 16 * 4); tex.sizeBytes() != want {
		t.Errorf("expected %d size bytes, got %d", want, tex.sizeBytes())
	}
}

func TestTextureUpload(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tex := createTestTexture(t, device, queue, "upload")
	defer tex.Close()

	if err := tex.Upload(make([]byte, 16*16*4)); err != nil {
		t.Errorf("Upload failed: %v", err)
	}
	if err := tex.Upload(make([]byte, 10)); !errors.Is(err, ErrPixelSizeMismatch) {
		t.Errorf("short upload: expected ErrPixelSizeMismatch, got %v", err)
	}
}

func TestTextureUploadImage(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tex := createTestTexture(t, device, queue, "img")
	defer tex.Close()

	// Exact size RGBA uploads directly.
	rgba := image.NewRGBA(image.Rect(0, 0, 16, 16))
	if err := tex.UploadImage(rgba); err != nil {
		t.Errorf("UploadImage RGBA failed: %v", err)
	}

	// Mismatched size and non-RGBA formats go through conversion.
	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	gray.SetGray(0, 0, color.Gray{Y: 200})
	if err := tex.UploadImage(gray); err != nil {
		t.Errorf("UploadImage gray failed: %v", err)
	}
}

func TestTextureClose(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	tex := createTestTexture(t, device, queue, "close")
	tex.Close()
	tex.Close() // idempotent

	if !tex.Released() {
		t.Error("expected Released after Close")
	}
	if tex.View() != nil {
		t.Error("expected nil view after Close")
	}
	if err := tex.Upload(make([]byte, 16*16*4)); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("Upload after Close: expected ErrTextureReleased, got %v", err)
	}
	if err := tex.UploadImage(image.NewRGBA(image.Rect(0, 0, 16, 16))); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("UploadImage after Close: expected ErrTextureReleased, got %v", err)
	}
}
