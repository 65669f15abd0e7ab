// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ui

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/quad"
)

// createFixtures builds the noop-backed texture and batch a button needs.
func createFixtures(t *testing.T) (*quad.Texture, *quad.SpriteBatch, func()) {
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
	device, queue := openDev.Device, openDev.Queue

	pipeline, err := quad.NewSpritePipeline(device, quad.PipelineConfig{})
	if err != nil {
		t.Fatalf("NewSpritePipeline failed: %v", err)
	}
	tex, err := quad.CreateTexture(device, queue, quad.TextureConfig{Width: 8, Height: 8, Label: "btn"})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	batch, err := quad.NewSpriteBatch(device, queue, pipeline, quad.BatchConfig{
		ScreenWidth:  320,
		ScreenHeight: 240,
	})
	if err != nil {
		t.Fatalf("NewSpriteBatch failed: %v", err)
	}
	return tex, batch, func() {
		batch.Destroy()
		tex.Close()
		pipeline.Destroy()
		device.Destroy()
		instance.Destroy()
	}
}

// nopPass implements quad.RenderPass and ignores everything.
type nopPass struct{}

func (nopPass) SetPipeline(hal.RenderPipeline)               {}
func (nopPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {}
func (nopPass) SetVertexBuffer(uint32, hal.Buffer, uint64)   {}
func (nopPass) Draw(uint32, uint32, uint32, uint32)          {}

func TestButtonStates(t *testing.T) {
	b := NewButton(nil, quad.Rect{X: 10, Y: 10, W: 100, H: 40})

	if b.State() != ButtonStateIdle {
		t.Errorf("new button: state %v, want idle", b.State())
	}

	// Pointer outside: idle.
	b.Update(0, 0, false)
	if b.State() != ButtonStateIdle {
		t.Errorf("pointer outside: state %v, want idle", b.State())
	}

	// Pointer inside, not pressed: hover.
	b.Update(50, 20, false)
	if b.State() != ButtonStateHover {
		t.Errorf("pointer inside: state %v, want hover", b.State())
	}

	// Press inside: pressed.
	b.Update(50, 20, true)
	if b.State() != ButtonStatePressed {
		t.Errorf("press: state %v, want pressed", b.State())
	}

	// Dragging outside while held keeps the pressed look.
	b.Update(200, 200, true)
	if b.State() != ButtonStatePressed {
		t.Errorf("drag outside: state %v, want pressed", b.State())
	}
}

func TestButtonClickFiresOnReleaseInside(t *testing.T) {
	clicks := 0
	b := NewButton(nil, quad.Rect{X: 0, Y: 0, W: 50, H: 50}).
		OnClick(func() { clicks++ })

	b.Update(10, 10, true)
	if clicked := b.Update(10, 10, false); !clicked {
		t.Error("expected click on release inside")
	}
	if clicks != 1 {
		t.Errorf("expected 1 click, got %d", clicks)
	}

	// Press inside, release outside: no click.
	b.Update(10, 10, true)
	if clicked := b.Update(100, 100, false); clicked {
		t.Error("expected no click on release outside")
	}
	if clicks != 1 {
		t.Errorf("expected click count unchanged, got %d", clicks)
	}

	// Release without a preceding press inside: no click.
	if clicked := b.Update(10, 10, false); clicked {
		t.Error("expected no click without press")
	}
}

func TestButtonDisabled(t *testing.T) {
	clicks := 0
	b := NewButton(nil, quad.Rect{X: 0, Y: 0, W: 50, H: 50}).
		OnClick(func() { clicks++ })

	b.SetEnabled(false)
	if b.State() != ButtonStateDisabled {
		t.Errorf("disabled: state %v, want disabled", b.State())
	}

	b.Update(10, 10, true)
	b.Update(10, 10, false)
	if clicks != 0 {
		t.Errorf("disabled button fired %d clicks", clicks)
	}
	if b.State() != ButtonStateDisabled {
		t.Errorf("disabled button changed state: %v", b.State())
	}

	b.SetEnabled(true)
	if b.State() != ButtonStateIdle {
		t.Errorf("re-enabled: state %v, want idle", b.State())
	}
}

func TestButtonDraw(t *testing.T) {
	tex, batch, cleanup := createFixtures(t)
	defer cleanup()

	b := NewButton(tex, quad.Rect{X: 20, Y: 20, W: 80, H: 30})
	b.Update(50, 30, false) // hover

	if err := batch.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := b.Draw(batch); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if err := batch.End(nopPass{}); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	stats := batch.Stats()
	if stats.Sprites != 1 || stats.DrawCalls != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestButtonBounds(t *testing.T) {
	b := NewButton(nil, quad.Rect{X: 1, Y: 2, W: 3, H: 4})
	if b.Bounds() != (quad.Rect{X: 1, Y: 2, W: 3, H: 4}) {
		t.Errorf("Bounds: got %+v", b.Bounds())
	}
	b.SetBounds(quad.Rect{X: 5, Y: 6, W: 7, H: 8})
	if b.Bounds() != (quad.Rect{X: 5, Y: 6, W: 7, H: 8}) {
		t.Errorf("SetBounds: got %+v", b.Bounds())
	}
}
