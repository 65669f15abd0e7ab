// Package quad provides a minimal 2D sprite framework for the GoGPU ecosystem.
//
// # Overview
//
// quad batches textured, tinted quads into as few GPU draw calls as possible.
// Draw requests accumulated between Begin and End are grouped by texture,
// expanded into interleaved vertex data on the CPU, staged into GPU-visible
// memory in a single transfer, and dispatched with one draw call per texture
// group. It targets small games and tools that already own a window, a
// swapchain, and a render loop.
//
// # Quick Start
//
//	import "github.com/gogpu/quad"
//
//	pipe, _ := quad.NewSpritePipeline(device, quad.PipelineConfig{})
//	batch, _ := quad.NewSpriteBatch(device, queue, pipe, quad.BatchConfig{
//	    ScreenWidth:  800,
//	    ScreenHeight: 600,
//	})
//
//	// Each frame, between beginning and ending a render pass:
//	batch.Begin()
//	batch.Draw(tex, quad.Rect{X: 10, Y: 10, W: 64, H: 64}, quad.White)
//	batch.End(renderPass)
//
// # Architecture
//
// The library is organized into:
//   - Batching: SpriteBatch (Begin/Draw/End), per-texture groups
//   - Upload: StagingBuffer write cursor + copy pass into the vertex buffer
//   - Resources: Texture, TextureManager (budgeted, LRU), SpritePipeline
//   - Widgets: ui.Button, drawn through a SpriteBatch
//
// quad receives its GPU device from the host application; it never creates
// one. Pass a hal.Device/hal.Queue pair directly, or extract them from a
// gpucontext provider with HALFromProvider.
//
// # Coordinate System
//
// Draw destinations are integer pixel rectangles with the origin at the
// top-left, X increasing right and Y increasing down. The sprite builder
// converts them to normalized device coordinates (Y flipped) on the CPU, so
// the shader applies no transform.
//
// # Concurrency
//
// A SpriteBatch is single-threaded: all Begin/Draw/End calls must happen on
// one goroutine, typically the render loop. If the GPU device is shared with
// other subsystems, the caller serializes access around the whole
// render-and-present sequence.
package quad

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
