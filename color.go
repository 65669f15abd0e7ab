// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import "image/color"

// Color is an RGBA tint with float32 components, typically in [0, 1].
// It is baked per-vertex into sprite data and multiplied with the sampled
// texel in the fragment shader. Components are not clamped; out-of-range
// values are left to the shader and hardware to handle.
type Color struct {
	R, G, B, A float32
}

// Common tint values.
var (
	White       = Color{1, 1, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	Transparent = Color{0, 0, 0, 0}
)

// RGB creates an opaque tint from RGB components.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a tint from RGBA components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to a Color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{
		R: float32(r) / 65535,
		G: float32(g) / 65535,
		B: float32(b) / 65535,
		A: float32(a) / 65535,
	}
}

// WithAlpha returns the color with its alpha component replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Scale returns the color with all four components multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}
