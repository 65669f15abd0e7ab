// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
)

// Texture-related errors.
var (
	// ErrTextureReleased is returned when operating on a closed texture.
	ErrTextureReleased = errors.New("quad: texture has been released")

	// ErrInvalidDimensions is returned when texture dimensions are not positive.
	ErrInvalidDimensions = errors.New("quad: texture dimensions must be positive")

	// ErrPixelSizeMismatch is returned when upload data does not match the
	// texture's pixel extent.
	ErrPixelSizeMismatch = errors.New("quad: pixel data size does not match texture")
)

// texBytesPerPixel is the byte size of one RGBA8 texel, the only format
// sprite textures use.
const texBytesPerPixel = 4

// Texture is a GPU-backed 2D texture with known pixel dimensions. Its
// pointer identity keys sprite batching: two Draw calls hit the same draw
// group exactly when they pass the same *Texture.
//
// Texture is safe for concurrent read access. Upload and Close should be
// synchronized externally.
type Texture struct {
	mu sync.RWMutex

	device hal.Device
	queue  hal.Queue

	tex  hal.Texture
	view hal.TextureView

	width  int
	height int
	label  string

	// manager is set when the texture is tracked by a TextureManager.
	manager *TextureManager

	released atomic.Bool
}

// TextureConfig holds configuration for creating a new texture.
type TextureConfig struct {
	// Width is the texture width in pixels.
	Width int

	// Height is the texture height in pixels.
	Height int

	// Label is an optional debug label.
	Label string
}

// CreateTexture creates an RGBA8 texture ready for sampling. The texture is
// uninitialized; fill it with Upload or UploadImage.
func CreateTexture(device hal.Device, queue hal.Queue, config TextureConfig) (*Texture, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, ErrInvalidDimensions
	}

	//nolint:gosec // dimensions validated positive above
	size := hal.Extent3D{
		Width:              uint32(config.Width),
		Height:             uint32(config.Height),
		DepthOrArrayLayers: 1,
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         config.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         config.Label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	return &Texture{
		device: device,
		queue:  queue,
		tex:    tex,
		view:   view,
		width:  config.Width,
		height: config.Height,
		label:  config.Label,
	}, nil
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.label }

// View returns the bindable texture view, or nil if the texture has been
// released.
func (t *Texture) View() hal.TextureView {
	if t.released.Load() {
		return nil
	}
	return t.view
}

// Released reports whether the texture has been closed.
func (t *Texture) Released() bool { return t.released.Load() }

// sizeBytes returns the GPU memory footprint used for budget tracking.
func (t *Texture) sizeBytes() uint64 {
	return uint64(t.width) * uint64(t.height) * texBytesPerPixel
}

// Upload replaces the full texture contents with tightly packed RGBA pixels
// (width*height*4 bytes, row-major, no padding).
func (t *Texture) Upload(pixels []byte) error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	want := t.width * t.height * texBytesPerPixel
	if len(pixels) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrPixelSizeMismatch, len(pixels), want)
	}

	//nolint:gosec // dimensions validated at creation
	w, h := uint32(t.width), uint32(t.height)
	t.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
		},
		pixels,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * texBytesPerPixel,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// UploadImage converts img to tightly packed RGBA and uploads it. The image
// is scaled to the texture extent if the sizes differ, using nearest-neighbor
// sampling (pixel-art friendly).
func (t *Texture) UploadImage(img image.Image) error {
	if t.released.Load() {
		return ErrTextureReleased
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	needsConvert := !ok ||
		bounds.Dx() != t.width || bounds.Dy() != t.height ||
		rgba.Stride != t.width*texBytesPerPixel || !bounds.Min.Eq(image.Point{})
	if needsConvert {
		dst := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		rgba = dst
	}
	return t.Upload(rgba.Pix)
}

// setManager records the owning TextureManager. Called with the manager's
// lock held during registration.
func (t *Texture) setManager(m *TextureManager) {
	t.mu.Lock()
	t.manager = m
	t.mu.Unlock()
}

// touch notifies the owning manager, if any, that the texture was used for
// rendering. Called from SpriteBatch.Draw.
func (t *Texture) touch() {
	t.mu.RLock()
	m := t.manager
	t.mu.RUnlock()
	if m != nil {
		m.TouchTexture(t)
	}
}

// Close releases the view and then the texture. Idempotent. If the texture
// is tracked by a TextureManager, it is unregistered first.
func (t *Texture) Close() {
	if t.released.Swap(true) {
		return
	}

	t.mu.Lock()
	m := t.manager
	t.manager = nil
	t.mu.Unlock()
	if m != nil {
		m.unregisterTexture(t)
	}

	// Release child before parent: view, then texture.
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
