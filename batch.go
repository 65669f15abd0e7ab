// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Sprite batch errors.
var (
	// ErrInvalidState is the base error for Begin/Draw/End calls made out of
	// sequence. The current frame is abandoned but the batch stays usable
	// for the next frame cycle.
	ErrInvalidState = errors.New("quad: sprite batch call out of sequence")

	// ErrAlreadyBegun is returned by Begin when a frame is already open.
	ErrAlreadyBegun = fmt.Errorf("%w: Begin while a frame is open", ErrInvalidState)

	// ErrNotBegun is returned by Draw and End outside an open frame.
	ErrNotBegun = fmt.Errorf("%w: no open frame", ErrInvalidState)

	// ErrUpload is the base error for failures while staging or copying
	// vertex data mid-End. The frame's draw is abandoned; the batch's
	// buffers remain intact for the next frame.
	ErrUpload = errors.New("quad: vertex upload failed")

	// ErrNilTexture is returned by Draw with a nil texture.
	ErrNilTexture = errors.New("quad: texture is nil")

	// ErrNilRenderPass is returned by End with a nil render pass.
	ErrNilRenderPass = errors.New("quad: render pass is nil")

	// ErrBatchDestroyed is returned when using a destroyed sprite batch.
	ErrBatchDestroyed = errors.New("quad: sprite batch has been destroyed")
)

// MaxSpritesPerBatch is the default sprite capacity of one upload round.
// Accumulating more sprites than this in a single frame is legal; End
// splits the frame into sequential upload+dispatch rounds of at most this
// many sprites, reusing the same buffer pair.
const MaxSpritesPerBatch = 2048

// RenderPass is the subset of render pass recording the sprite dispatcher
// needs. hal.RenderPassEncoder satisfies it; tests substitute a recorder.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// FrameStats captures the counts generated during one Begin/End cycle.
type FrameStats struct {
	// Sprites is the number of Draw calls accepted this frame.
	Sprites int

	// DrawCalls is the number of GPU draw dispatches issued by End.
	DrawCalls int

	// Textures is the number of distinct textures referenced this frame.
	Textures int

	// UploadRounds is the number of upload+dispatch rounds End performed.
	UploadRounds int

	// UploadBytes is the total vertex byte count transferred to the GPU.
	UploadBytes uint64
}

// textureGroup accumulates the sprites drawn with one texture, in call
// order. Groups are created lazily on the first Draw for a texture, so a
// group always holds at least one sprite.
type textureGroup struct {
	texture *Texture

	// verts holds spriteFloats values per sprite, in Draw order.
	verts []float32
}

// spriteCount returns the number of sprites accumulated in the group.
func (g *textureGroup) spriteCount() int {
	return len(g.verts) / spriteFloats
}

// SpriteBatch accumulates textured quad draw requests between Begin and End,
// groups them by texture identity, and flushes them in End as one staged
// vertex upload per round plus one draw call per texture group.
//
// Ordering: sprites sharing a texture render in Draw-call order. Across
// textures, groups render in the order their texture was first seen this
// frame, NOT in global call order: a later Draw for an earlier-seen texture
// renders before an earlier Draw for a later-seen texture.
//
// SpriteBatch is NOT safe for concurrent use. All calls must happen on one
// goroutine, typically the render loop.
type SpriteBatch struct {
	device hal.Device
	queue  hal.Queue

	// pipeline is borrowed from the caller and must outlive the batch.
	pipeline *SpritePipeline

	// vertexBuf is the device-local vertex buffer, fixed at
	// maxSprites*VerticesPerSprite*VertexStride bytes.
	vertexBuf hal.Buffer

	// staging is the CPU-visible transfer buffer of identical capacity.
	staging *StagingBuffer

	screenW, screenH int
	maxSprites       int

	begun     bool
	destroyed bool

	groups     []*textureGroup
	groupIndex map[*Texture]*textureGroup

	// scratch is the byte-encoding buffer for one sprite's vertex block.
	scratch [spriteBytes]byte

	stats FrameStats
}

// BatchConfig holds configuration for creating a SpriteBatch.
type BatchConfig struct {
	// ScreenWidth and ScreenHeight are the pixel extent of the logical
	// render target used for the NDC transform. Both must be positive.
	ScreenWidth  int
	ScreenHeight int

	// MaxSprites caps one upload round. Defaults to MaxSpritesPerBatch
	// if zero or negative.
	MaxSprites int

	// Label is an optional debug label prefix for the GPU buffers.
	Label string
}

// NewSpriteBatch creates a sprite batch with its vertex and staging buffers
// pre-allocated. On any creation failure all partially created resources
// are released and an error is returned; there is no partially usable batch.
//
// The device, queue, and pipeline are borrowed and must outlive the batch.
func NewSpriteBatch(device hal.Device, queue hal.Queue, pipeline *SpritePipeline, config BatchConfig) (*SpriteBatch, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if pipeline == nil {
		return nil, errors.New("quad: pipeline is nil")
	}
	if config.ScreenWidth <= 0 || config.ScreenHeight <= 0 {
		return nil, fmt.Errorf("quad: invalid screen size %dx%d", config.ScreenWidth, config.ScreenHeight)
	}

	maxSprites := config.MaxSprites
	if maxSprites <= 0 {
		maxSprites = MaxSpritesPerBatch
	}
	label := config.Label
	if label == "" {
		label = "sprite_batch"
	}
	capacity := uint64(maxSprites) * spriteBytes

	vertexBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_verts",
		Size:  capacity,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	staging, err := newStagingBuffer(device, queue, capacity, label+"_staging")
	if err != nil {
		device.DestroyBuffer(vertexBuf)
		return nil, err
	}

	return &SpriteBatch{
		device:     device,
		queue:      queue,
		pipeline:   pipeline,
		vertexBuf:  vertexBuf,
		staging:    staging,
		screenW:    config.ScreenWidth,
		screenH:    config.ScreenHeight,
		maxSprites: maxSprites,
		groupIndex: make(map[*Texture]*textureGroup),
	}, nil
}

// SetScreenSize updates the pixel extent used for the NDC transform, e.g.
// after a window resize. It affects sprites drawn after the call.
func (b *SpriteBatch) SetScreenSize(width, height int) {
	if width > 0 && height > 0 {
		b.screenW = width
		b.screenH = height
	}
}

// Stats returns the statistics of the most recent frame. Counters for
// Draw-side fields update live during an open frame; upload and dispatch
// fields are filled in by End.
func (b *SpriteBatch) Stats() FrameStats { return b.stats }

// Begin opens a batching pass, clearing any prior frame's groups. It fails
// with ErrAlreadyBegun if a frame is already open; the open frame's
// accumulated state is unaffected.
func (b *SpriteBatch) Begin() error {
	if b.destroyed {
		return ErrBatchDestroyed
	}
	if b.begun {
		return ErrAlreadyBegun
	}
	b.begun = true
	b.clearGroups()
	b.stats = FrameStats{}
	return nil
}

// Draw appends one textured quad to the current frame. dst is in pixel
// coordinates of the logical render target; tint is multiplied per-texel by
// the shader and is not clamped. No GPU work occurs.
//
// Draw fails with ErrNotBegun outside Begin/End, leaving the batch
// unchanged.
func (b *SpriteBatch) Draw(tex *Texture, dst Rect, tint Color) error {
	if b.destroyed {
		return ErrBatchDestroyed
	}
	if !b.begun {
		return ErrNotBegun
	}
	if tex == nil {
		return ErrNilTexture
	}
	if tex.Released() {
		return ErrTextureReleased
	}

	group, ok := b.groupIndex[tex]
	if !ok {
		group = &textureGroup{texture: tex}
		b.groupIndex[tex] = group
		b.groups = append(b.groups, group)
		b.stats.Textures++
	}

	verts := spriteVertices(dst, b.screenW, b.screenH, tint)
	group.verts = append(group.verts, verts[:]...)
	b.stats.Sprites++

	tex.touch()
	return nil
}

// End closes the batching pass: it flattens the texture groups into one
// contiguous vertex sequence, uploads it through the staging buffer, and
// records one draw call per texture group into rp, bound at the group's
// byte offset into the shared vertex buffer.
//
// Frames with more than the configured sprite capacity are split into
// sequential upload+dispatch rounds reusing the same buffer pair. An empty
// frame performs no upload and no draws.
//
// End always closes the frame once the sequencing check passes, even when
// the upload fails; the batch and its buffers stay usable for the next
// frame.
func (b *SpriteBatch) End(rp RenderPass) error {
	if b.destroyed {
		return ErrBatchDestroyed
	}
	if !b.begun {
		return ErrNotBegun
	}
	b.begun = false

	if rp == nil {
		return ErrNilRenderPass
	}
	if len(b.groups) == 0 {
		return nil
	}

	// Flatten groups into rounds of at most maxSprites sprites. A group
	// larger than one round is split across rounds; grouping order and
	// intra-group sprite order are preserved.
	var round []drawSpan
	inRound := 0
	for _, g := range b.groups {
		remaining := g.spriteCount()
		first := 0
		for remaining > 0 {
			n := remaining
			if n > b.maxSprites-inRound {
				n = b.maxSprites - inRound
			}
			round = append(round, drawSpan{group: g, first: first, count: n})
			first += n
			remaining -= n
			inRound += n

			if inRound == b.maxSprites {
				if err := b.flushRound(rp, round); err != nil {
					return err
				}
				round = round[:0]
				inRound = 0
			}
		}
	}
	if len(round) > 0 {
		if err := b.flushRound(rp, round); err != nil {
			return err
		}
	}

	Logger().Debug("sprite batch flushed",
		"sprites", b.stats.Sprites,
		"textures", b.stats.Textures,
		"drawCalls", b.stats.DrawCalls,
		"rounds", b.stats.UploadRounds,
		"bytes", b.stats.UploadBytes)
	return nil
}

// drawSpan is a contiguous run of one group's sprites within a round.
type drawSpan struct {
	group *textureGroup
	first int
	count int
}

// flushRound uploads the round's vertex data and records its draw calls.
func (b *SpriteBatch) flushRound(rp RenderPass, round []drawSpan) error {
	uploaded, err := b.uploadRound(round)
	if err != nil {
		return err
	}
	b.stats.UploadRounds++
	b.stats.UploadBytes += uploaded

	// One draw per span, addressed by the vertex buffer binding offset;
	// the draw itself always starts at vertex 0.
	vertexIndex := 0
	for _, span := range round {
		bg, err := b.pipeline.bindGroupFor(span.group.texture)
		if err != nil {
			return fmt.Errorf("bind %q: %w", span.group.texture.Label(), err)
		}

		rp.SetPipeline(b.pipeline.RenderPipeline())
		rp.SetVertexBuffer(0, b.vertexBuf, uint64(vertexIndex)*VertexStride)
		rp.SetBindGroup(0, bg, nil)
		//nolint:gosec // span counts bounded by maxSprites
		rp.Draw(uint32(span.count*VerticesPerSprite), 1, 0, 0)

		b.stats.DrawCalls++
		vertexIndex += span.count * VerticesPerSprite
	}
	return nil
}

// uploadRound stages the round's sprite blocks in span order and issues a
// single buffer-to-buffer copy into the vertex buffer, blocking until the
// GPU has consumed the transfer. The per-sprite copy order determines the
// dispatcher's range math and must not change.
func (b *SpriteBatch) uploadRound(round []drawSpan) (uint64, error) {
	if err := b.staging.Map(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	for _, span := range round {
		for s := span.first; s < span.first+span.count; s++ {
			putVertexFloats(b.scratch[:], span.group.verts[s*spriteFloats:(s+1)*spriteFloats])
			if err := b.staging.Write(b.scratch[:]); err != nil {
				// Abandon the pass; never leave the staging buffer mapped.
				_, _ = b.staging.Unmap()
				return 0, fmt.Errorf("%w: %w", ErrUpload, err)
			}
		}
	}
	total, err := b.staging.Unmap()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_upload",
	})
	if err != nil {
		return 0, fmt.Errorf("%w: create encoder: %w", ErrUpload, err)
	}
	if err := encoder.BeginEncoding("sprite_upload"); err != nil {
		return 0, fmt.Errorf("%w: begin encoding: %w", ErrUpload, err)
	}
	encoder.CopyBufferToBuffer(b.staging.Raw(), b.vertexBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: total},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return 0, fmt.Errorf("%w: end encoding: %w", ErrUpload, err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	if _, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return 0, fmt.Errorf("%w: submit: %w", ErrUpload, err)
	}
	// Blocking wait: the next round may overwrite the staging buffer, so the
	// transfer must complete before this call returns.
	if err := b.device.WaitIdle(); err != nil {
		return 0, fmt.Errorf("%w: wait: %w", ErrUpload, err)
	}
	return total, nil
}

// clearGroups resets the per-frame accumulation state, keeping allocations
// for reuse.
func (b *SpriteBatch) clearGroups() {
	for _, g := range b.groups {
		g.verts = nil
	}
	b.groups = b.groups[:0]
	clear(b.groupIndex)
}

// Destroy releases the batch's buffers: the staging buffer first, then the
// vertex buffer. The borrowed pipeline, device, and queue are untouched.
// Idempotent.
func (b *SpriteBatch) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.begun = false
	b.clearGroups()

	if b.staging != nil {
		b.staging.Destroy()
		b.staging = nil
	}
	if b.vertexBuf != nil {
		b.device.DestroyBuffer(b.vertexBuf)
		b.vertexBuf = nil
	}
}
