// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

// spriteVertices expands one draw request into the six vertices of a
// triangle-list quad in normalized device coordinates.
//
// The destination rectangle is in pixel coordinates with a top-left origin;
// the NDC transform flips Y so the top-left pixel maps to (-1, 1):
//
//	x_ndc = (px/screenW)*2 - 1
//	y_ndc = 1 - (py/screenH)*2
//
// Texture coordinates map the rectangle corners to the unit square. The two
// triangles are TL,BL,TR and TR,BL,BR, sharing the TR/BL diagonal, so the
// four logical corners expand to six vertices with a consistent winding.
// z is always 0, reserved for future layering.
func spriteVertices(dst Rect, screenW, screenH int, tint Color) [spriteFloats]float32 {
	sw := float32(screenW)
	sh := float32(screenH)

	x0 := float32(dst.X)/sw*2 - 1
	y0 := 1 - float32(dst.Y)/sh*2
	x1 := float32(dst.X+dst.W)/sw*2 - 1
	y1 := 1 - float32(dst.Y+dst.H)/sh*2

	// Corner order per triangle: TL, BL, TR / TR, BL, BR.
	return [spriteFloats]float32{
		x0, y0, 0, 0, 0, tint.R, tint.G, tint.B, tint.A, // TL
		x0, y1, 0, 0, 1, tint.R, tint.G, tint.B, tint.A, // BL
		x1, y0, 0, 1, 0, tint.R, tint.G, tint.B, tint.A, // TR
		x1, y0, 0, 1, 0, tint.R, tint.G, tint.B, tint.A, // TR
		x0, y1, 0, 0, 1, tint.R, tint.G, tint.B, tint.A, // BL
		x1, y1, 0, 1, 1, tint.R, tint.G, tint.B, tint.A, // BR
	}
}
