// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// Vertex wire format uploaded to the GPU. Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0, z reserved for layering)
//	texcoord (vec2<f32>) = 8 bytes  (location 1)
//	color    (vec4<f32>) = 16 bytes (location 2)
//
// Total = 36 bytes per vertex.
const (
	// FloatsPerVertex is the number of float32 components per vertex.
	FloatsPerVertex = 9

	// VertexStride is the byte stride per vertex.
	VertexStride = FloatsPerVertex * 4

	// VerticesPerSprite is the vertex count for one quad: two triangles in
	// a triangle list, sharing the diagonal corners.
	VerticesPerSprite = 6

	// spriteBytes is the byte size of one sprite's vertex block.
	spriteBytes = VerticesPerSprite * VertexStride

	// spriteFloats is the float32 count of one sprite's vertex block.
	spriteFloats = VerticesPerSprite * FloatsPerVertex
)

// putVertexFloats writes the packed float32 components of one sprite
// (spriteFloats values) into buf. buf must have at least spriteBytes bytes.
func putVertexFloats(buf []byte, verts []float32) {
	for i, f := range verts {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(f))
	}
}

// spriteVertexLayout returns the vertex buffer layout for the sprite pipeline.
// Matches VertexInput in shaders/sprite.wgsl:
//
//	location 0: position (vec3<f32>)
//	location 1: tex_coord (vec2<f32>)
//	location 2: color (vec4<f32>)
func spriteVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, // texcoord
				{Format: gputypes.VertexFormatFloat32x4, Offset: 20, ShaderLocation: 2}, // color
			},
		},
	}
}
