// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command quaddemo renders a sprite scene headlessly and prints the frame
// statistics. It runs on the noop HAL backend, so it exercises the full
// batching and upload path without a GPU or a window.
package main

import (
	"flag"
	"log"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/quad"
	"github.com/gogpu/quad/ui"
)

func main() {
	var (
		width   = flag.Int("width", 800, "render target width")
		height  = flag.Int("height", 600, "render target height")
		sprites = flag.Int("sprites", 3000, "number of sprites to draw")
		budget  = flag.Int("budget", 64, "texture memory budget in MB")
	)
	flag.Parse()

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("create instance: %v", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		log.Fatal("no adapters found")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("open device: %v", err)
	}
	device, queue := openDev.Device, openDev.Queue
	defer device.Destroy()

	pipeline, err := quad.NewSpritePipeline(device, quad.PipelineConfig{
		TargetFormat: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		log.Fatalf("create pipeline: %v", err)
	}
	defer pipeline.Destroy()

	manager := quad.NewTextureManager(device, queue, quad.TextureManagerConfig{
		BudgetMB: *budget,
	})
	defer manager.Close()

	checker, err := makeCheckerTexture(manager, 64, 0xFF4060C0, 0xFFE0E0E0)
	if err != nil {
		log.Fatalf("create checker texture: %v", err)
	}
	solid, err := makeCheckerTexture(manager, 32, 0xFF30C060, 0xFF30C060)
	if err != nil {
		log.Fatalf("create solid texture: %v", err)
	}

	batch, err := quad.NewSpriteBatch(device, queue, pipeline, quad.BatchConfig{
		ScreenWidth:  *width,
		ScreenHeight: *height,
	})
	if err != nil {
		log.Fatalf("create batch: %v", err)
	}
	defer batch.Destroy()

	target, targetView, err := createRenderTarget(device, *width, *height)
	if err != nil {
		log.Fatalf("create render target: %v", err)
	}
	defer device.DestroyTextureView(targetView)
	defer device.DestroyTexture(target)

	button := ui.NewButton(solid, quad.Rect{X: 20, Y: 20, W: 160, H: 48}).
		OnClick(func() { log.Println("button clicked") })
	button.Update(100, 40, false) // hover

	if err := renderFrame(device, queue, batch, targetView, func() error {
		// A grid of checker sprites plus the button on top.
		const cell = 24
		cols := *width / cell
		for i := 0; i < *sprites; i++ {
			x := (i % cols) * cell
			y := (i / cols * cell) % *height
			tint := quad.White
			if i%3 == 0 {
				tint = quad.RGBA(1, 0.7, 0.7, 1)
			}
			if err := batch.Draw(checker, quad.Rect{X: x, Y: y, W: cell, H: cell}, tint); err != nil {
				return err
			}
		}
		return button.Draw(batch)
	}); err != nil {
		log.Fatalf("render: %v", err)
	}

	stats := batch.Stats()
	log.Printf("frame: %d sprites, %d textures, %d draw calls, %d upload rounds, %d bytes",
		stats.Sprites, stats.Textures, stats.DrawCalls, stats.UploadRounds, stats.UploadBytes)
	log.Printf("textures: %v", manager.Stats())
}

// makeCheckerTexture allocates a size x size texture filled with a 2x2-cell
// checkerboard of the two packed ABGR colors.
func makeCheckerTexture(manager *quad.TextureManager, size int, a, b uint32) (*quad.Texture, error) {
	tex, err := manager.AllocTexture(quad.TextureConfig{
		Width:  size,
		Height: size,
		Label:  "checker",
	})
	if err != nil {
		return nil, err
	}

	pixels := make([]byte, size*size*4)
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x < half) != (y < half) {
				c = b
			}
			i := (y*size + x) * 4
			pixels[i+0] = byte(c)
			pixels[i+1] = byte(c >> 8)
			pixels[i+2] = byte(c >> 16)
			pixels[i+3] = byte(c >> 24)
		}
	}
	if err := tex.Upload(pixels); err != nil {
		tex.Close()
		return nil, err
	}
	return tex, nil
}

// createRenderTarget creates an offscreen color attachment and its view.
func createRenderTarget(device hal.Device, width, height int) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label: "demo_target",
		Size: hal.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "demo_target_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, err
	}
	return tex, view, nil
}

// renderFrame records one cleared render pass around a batch Begin/End
// cycle and submits it.
func renderFrame(device hal.Device, queue hal.Queue, batch *quad.SpriteBatch, target hal.TextureView, draw func() error) error {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "demo_frame"})
	if err != nil {
		return err
	}
	if err := encoder.BeginEncoding("demo_frame"); err != nil {
		return err
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "demo_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0.08, G: 0.08, B: 0.1, A: 1},
		}},
	})

	if err := batch.Begin(); err != nil {
		encoder.DiscardEncoding()
		return err
	}
	if err := draw(); err != nil {
		encoder.DiscardEncoding()
		return err
	}
	if err := batch.End(rp); err != nil {
		encoder.DiscardEncoding()
		return err
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return err
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if _, err := queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return err
	}
	return device.WaitIdle()
}
