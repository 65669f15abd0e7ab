// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ui provides minimal sprite-based widgets drawn through a
// quad.SpriteBatch. Widgets hold no GPU resources of their own; they tint a
// caller-supplied texture per interaction state.
package ui

import (
	"github.com/gogpu/quad"
)

// ButtonState tracks button interaction state.
type ButtonState int

const (
	ButtonStateIdle ButtonState = iota
	ButtonStateHover
	ButtonStatePressed
	ButtonStateDisabled
)

// ButtonStyle defines the tint applied to the button texture per state.
type ButtonStyle struct {
	TintIdle     quad.Color
	TintHover    quad.Color
	TintPressed  quad.Color
	TintDisabled quad.Color
}

// DefaultButtonStyle returns the default button styling.
func DefaultButtonStyle() ButtonStyle {
	return ButtonStyle{
		TintIdle:     quad.RGB(0.8, 0.8, 0.8),
		TintHover:    quad.White,
		TintPressed:  quad.RGB(0.55, 0.55, 0.55),
		TintDisabled: quad.RGB(0.35, 0.35, 0.35).WithAlpha(0.6),
	}
}

// Button is a clickable sprite widget. It does not read input devices;
// the host feeds pointer position and primary-button state into Update
// each frame, and Draw records the sprite into the batch.
type Button struct {
	texture *quad.Texture
	bounds  quad.Rect
	style   ButtonStyle
	state   ButtonState
	enabled bool
	onClick func()

	wasPressed bool
}

// NewButton creates a button covering bounds, textured with tex.
func NewButton(tex *quad.Texture, bounds quad.Rect) *Button {
	return &Button{
		texture: tex,
		bounds:  bounds,
		style:   DefaultButtonStyle(),
		enabled: true,
	}
}

func (b *Button) WithStyle(style ButtonStyle) *Button {
	b.style = style
	return b
}

func (b *Button) OnClick(handler func()) *Button {
	b.onClick = handler
	return b
}

// SetBounds moves or resizes the button.
func (b *Button) SetBounds(bounds quad.Rect) { b.bounds = bounds }

// Bounds returns the button's pixel rectangle.
func (b *Button) Bounds() quad.Rect { return b.bounds }

// State returns the current interaction state.
func (b *Button) State() ButtonState { return b.state }

// SetEnabled toggles interactivity. A disabled button stays in
// ButtonStateDisabled and never fires its click handler.
func (b *Button) SetEnabled(enabled bool) {
	b.enabled = enabled
	if !enabled {
		b.state = ButtonStateDisabled
		b.wasPressed = false
	} else if b.state == ButtonStateDisabled {
		b.state = ButtonStateIdle
	}
}

// Update advances the interaction state from the host's pointer snapshot.
// The click handler fires on release while the pointer is inside the
// bounds, matching common desktop button behavior. Update reports whether
// a click fired.
func (b *Button) Update(pointerX, pointerY int, pressed bool) bool {
	if !b.enabled {
		return false
	}
	inside := b.bounds.Contains(pointerX, pointerY)

	clicked := false
	switch {
	case pressed && inside && !b.wasPressed:
		b.state = ButtonStatePressed
	case pressed && b.state == ButtonStatePressed:
		// Keep the pressed look while the pointer drags, even outside.
	case !pressed && b.wasPressed && b.state == ButtonStatePressed:
		if inside {
			clicked = true
			if b.onClick != nil {
				b.onClick()
			}
		}
		fallthrough
	default:
		if inside {
			b.state = ButtonStateHover
		} else {
			b.state = ButtonStateIdle
		}
	}
	b.wasPressed = pressed
	return clicked
}

// Draw records the button sprite into the batch with the tint of the
// current state. The batch must be between Begin and End.
func (b *Button) Draw(batch *quad.SpriteBatch) error {
	var tint quad.Color
	switch b.state {
	case ButtonStateHover:
		tint = b.style.TintHover
	case ButtonStatePressed:
		tint = b.style.TintPressed
	case ButtonStateDisabled:
		tint = b.style.TintDisabled
	default:
		tint = b.style.TintIdle
	}
	return batch.Draw(b.texture, b.bounds, tint)
}
