// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Staging buffer errors.
var (
	// ErrStagingDestroyed is returned when operating on a destroyed staging buffer.
	ErrStagingDestroyed = errors.New("quad: staging buffer has been destroyed")

	// ErrStagingMapped is returned when mapping an already mapped staging buffer.
	ErrStagingMapped = errors.New("quad: staging buffer is already mapped")

	// ErrStagingNotMapped is returned when writing to or unmapping an
	// unmapped staging buffer.
	ErrStagingNotMapped = errors.New("quad: staging buffer is not mapped")

	// ErrStagingOverflow is returned when a write would exceed the staging
	// buffer's fixed capacity.
	ErrStagingOverflow = errors.New("quad: write exceeds staging buffer capacity")

	// ErrInvalidStagingSize is returned when creating a staging buffer with
	// a zero or negative capacity.
	ErrInvalidStagingSize = errors.New("quad: invalid staging buffer size")
)

// StagingBuffer is a fixed-capacity CPU-visible region paired with a GPU
// transfer buffer. It provides a bounded write cursor: callers Map the
// buffer, append byte blocks with Write (validated against capacity), and
// Unmap to flush the written range to GPU-visible memory.
//
// Lifecycle:
//  1. Create via newStagingBuffer()
//  2. Map() to open a write pass
//  3. Write() repeatedly; the cursor advances, bounds-checked
//  4. Unmap() to flush; returns the number of bytes staged
//  5. Destroy() when the buffer is no longer needed
//
// StagingBuffer is NOT safe for concurrent use. It is exclusively owned by
// one SpriteBatch and used from its goroutine.
type StagingBuffer struct {
	queue hal.Queue

	// buf is the GPU-side transfer buffer (CopySrc).
	buf hal.Buffer

	// device is retained only to destroy buf.
	device hal.Device

	// shadow is the CPU-visible staging region, capacity bytes long.
	shadow []byte

	capacity  uint64
	cursor    uint64
	mapped    bool
	destroyed bool
	label     string
}

// newStagingBuffer creates a staging buffer of the given byte capacity.
// The GPU transfer buffer is created with MapWrite|CopySrc usage so it can
// feed buffer-to-buffer copy passes.
func newStagingBuffer(device hal.Device, queue hal.Queue, capacity uint64, label string) (*StagingBuffer, error) {
	if capacity == 0 {
		return nil, ErrInvalidStagingSize
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  capacity,
		Usage: gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}

	return &StagingBuffer{
		queue:    queue,
		buf:      buf,
		device:   device,
		shadow:   make([]byte, capacity),
		capacity: capacity,
		label:    label,
	}, nil
}

// Capacity returns the fixed byte capacity of the staging region.
func (s *StagingBuffer) Capacity() uint64 { return s.capacity }

// Map opens a write pass at cursor 0. The buffer must not already be mapped.
func (s *StagingBuffer) Map() error {
	if s.destroyed {
		return ErrStagingDestroyed
	}
	if s.mapped {
		return ErrStagingMapped
	}
	s.mapped = true
	s.cursor = 0
	return nil
}

// Write appends p at the current cursor. The destination capacity is
// validated before every copy; on overflow nothing is written and the
// cursor is unchanged.
func (s *StagingBuffer) Write(p []byte) error {
	if s.destroyed {
		return ErrStagingDestroyed
	}
	if !s.mapped {
		return ErrStagingNotMapped
	}
	if s.cursor+uint64(len(p)) > s.capacity {
		return fmt.Errorf("%w: cursor %d + %d bytes > capacity %d",
			ErrStagingOverflow, s.cursor, len(p), s.capacity)
	}
	copy(s.shadow[s.cursor:], p)
	s.cursor += uint64(len(p))
	return nil
}

// Unmap closes the write pass and flushes the written range to the GPU
// transfer buffer, making it visible to subsequent copy passes. It returns
// the number of bytes staged.
func (s *StagingBuffer) Unmap() (uint64, error) {
	if s.destroyed {
		return 0, ErrStagingDestroyed
	}
	if !s.mapped {
		return 0, ErrStagingNotMapped
	}
	n := s.cursor
	if n > 0 {
		s.queue.WriteBuffer(s.buf, 0, s.shadow[:n])
	}
	s.mapped = false
	s.cursor = 0
	return n, nil
}

// Raw returns the underlying transfer buffer for use as a copy source.
// Returns nil if the staging buffer has been destroyed.
func (s *StagingBuffer) Raw() hal.Buffer {
	if s.destroyed {
		return nil
	}
	return s.buf
}

// Destroy releases the GPU transfer buffer. Idempotent. An open write pass
// is abandoned.
func (s *StagingBuffer) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.mapped = false
	s.shadow = nil
	if s.buf != nil {
		s.device.DestroyBuffer(s.buf)
		s.buf = nil
	}
}
