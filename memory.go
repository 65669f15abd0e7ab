// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quad

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// Texture memory management errors.
var (
	// ErrTextureBudgetExceeded is returned when an allocation cannot fit the
	// memory budget even after eviction.
	ErrTextureBudgetExceeded = errors.New("quad: texture memory budget exceeded")

	// ErrTextureManagerClosed is returned when operating on a closed manager.
	ErrTextureManagerClosed = errors.New("quad: texture manager closed")
)

// Default texture memory limits.
const (
	// DefaultTextureBudgetMB is the default texture memory budget (128 MB).
	DefaultTextureBudgetMB = 128

	// MinTextureBudgetMB is the minimum allowed budget (8 MB).
	MinTextureBudgetMB = 8
)

// TextureStats contains texture memory usage statistics.
type TextureStats struct {
	// TotalBytes is the memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the currently allocated memory in bytes.
	UsedBytes uint64

	// TextureCount is the number of live textures.
	TextureCount int

	// EvictionCount is the total number of textures evicted.
	EvictionCount uint64
}

// String returns a human-readable summary of the stats.
func (s TextureStats) String() string {
	return fmt.Sprintf("Textures[%d/%d MB, %d textures, %d evictions]",
		s.UsedBytes/(1024*1024),
		s.TotalBytes/(1024*1024),
		s.TextureCount,
		s.EvictionCount)
}

// textureEntry tracks a texture in the manager with LRU information.
type textureEntry struct {
	texture   *Texture
	sizeBytes uint64
	lastUsed  time.Time
	element   *list.Element // position in the LRU list
}

// TextureManager tracks GPU texture allocations against a byte budget and
// evicts the least recently drawn textures when an allocation would exceed
// it. SpriteBatch.Draw touches textures through the manager, so textures in
// active use stay resident.
//
// TextureManager is safe for concurrent use.
type TextureManager struct {
	mu sync.RWMutex

	device hal.Device
	queue  hal.Queue

	budgetBytes uint64
	usedBytes   uint64

	textures map[*Texture]*textureEntry

	// lruList front = most recently used, back = least recently used.
	lruList *list.List

	evictionCount uint64
	closed        bool
}

// TextureManagerConfig holds configuration for creating a TextureManager.
type TextureManagerConfig struct {
	// BudgetMB is the texture memory budget in megabytes.
	// Defaults to DefaultTextureBudgetMB if below MinTextureBudgetMB.
	BudgetMB int
}

// NewTextureManager creates a texture manager that allocates on the given
// device and uploads through the given queue.
func NewTextureManager(device hal.Device, queue hal.Queue, config TextureManagerConfig) *TextureManager {
	budget := config.BudgetMB
	if budget < MinTextureBudgetMB {
		budget = DefaultTextureBudgetMB
	}

	//nolint:gosec // budget bounded by MinTextureBudgetMB minimum
	return &TextureManager{
		device:      device,
		queue:       queue,
		budgetBytes: uint64(budget) * 1024 * 1024,
		textures:    make(map[*Texture]*textureEntry),
		lruList:     list.New(),
	}
}

// AllocTexture creates a new texture under budget tracking. If the
// allocation would exceed the budget, least recently used textures are
// evicted first. Returns an error if the allocation cannot be satisfied
// even after eviction.
func (m *TextureManager) AllocTexture(config TextureConfig) (*Texture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrTextureManagerClosed
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, ErrInvalidDimensions
	}

	requiredBytes := uint64(config.Width) * uint64(config.Height) * texBytesPerPixel
	if requiredBytes > m.budgetBytes {
		return nil, fmt.Errorf("%w: texture needs %d bytes, budget is %d",
			ErrTextureBudgetExceeded, requiredBytes, m.budgetBytes)
	}

	if err := m.evictIfNeeded(requiredBytes); err != nil {
		return nil, err
	}

	tex, err := CreateTexture(m.device, m.queue, config)
	if err != nil {
		return nil, err
	}

	entry := &textureEntry{
		texture:   tex,
		sizeBytes: tex.sizeBytes(),
		lastUsed:  time.Now(),
	}
	entry.element = m.lruList.PushFront(entry)
	m.textures[tex] = entry
	m.usedBytes += entry.sizeBytes
	tex.setManager(m)

	return tex, nil
}

// FreeTexture closes a texture and returns its memory to the budget.
// The texture must not be used after this call.
func (m *TextureManager) FreeTexture(tex *Texture) error {
	if tex == nil {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrTextureManagerClosed
	}

	entry, ok := m.textures[tex]
	if !ok {
		m.mu.Unlock()
		// Not managed here; just close it.
		tex.Close()
		return nil
	}
	m.removeEntryLocked(entry)
	m.mu.Unlock()

	// Close outside the lock; the manager reference was already cleared so
	// Close will not call back into unregisterTexture.
	tex.Close()
	return nil
}

// TouchTexture marks a texture as recently used, moving it to the front of
// the LRU list. SpriteBatch.Draw calls this for every managed texture.
func (m *TextureManager) TouchTexture(tex *Texture) {
	if tex == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.textures[tex]
	if !ok {
		return
	}
	entry.lastUsed = time.Now()
	m.lruList.MoveToFront(entry.element)
}

// Contains reports whether the texture is tracked by this manager.
func (m *TextureManager) Contains(tex *Texture) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.textures[tex]
	return ok
}

// Stats returns current texture memory statistics.
func (m *TextureManager) Stats() TextureStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return TextureStats{
		TotalBytes:    m.budgetBytes,
		UsedBytes:     m.usedBytes,
		TextureCount:  len(m.textures),
		EvictionCount: m.evictionCount,
	}
}

// SetBudget updates the memory budget. Lowering it below current usage
// evicts least recently used textures immediately.
func (m *TextureManager) SetBudget(megabytes int) error {
	if megabytes < MinTextureBudgetMB {
		megabytes = MinTextureBudgetMB
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrTextureManagerClosed
	}
	//nolint:gosec // bounded by MinTextureBudgetMB minimum
	m.budgetBytes = uint64(megabytes) * 1024 * 1024
	return m.evictIfNeeded(0)
}

// Close releases all tracked textures and closes the manager.
func (m *TextureManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	for tex, entry := range m.textures {
		m.lruList.Remove(entry.element)
		tex.setManager(nil)
		tex.Close()
	}
	m.textures = nil
	m.lruList = nil
	m.usedBytes = 0
	m.closed = true
}

// unregisterTexture removes a texture from tracking. Called by
// Texture.Close when the caller closes a managed texture directly.
func (m *TextureManager) unregisterTexture(tex *Texture) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.textures[tex]; ok {
		m.removeEntryLocked(entry)
	}
}

// removeEntryLocked removes an entry from tracking and clears the texture's
// manager reference to prevent a double unregister. Caller must hold mu.
func (m *TextureManager) removeEntryLocked(entry *textureEntry) {
	if entry.element != nil {
		m.lruList.Remove(entry.element)
	}
	delete(m.textures, entry.texture)
	m.usedBytes -= entry.sizeBytes
	entry.texture.setManager(nil)
}

// evictIfNeeded evicts textures from the back of the LRU list until there
// is room for the requested size. Caller must hold mu.
func (m *TextureManager) evictIfNeeded(requestedBytes uint64) error {
	for m.usedBytes+requestedBytes > m.budgetBytes && m.lruList.Len() > 0 {
		elem := m.lruList.Back()
		entry, ok := elem.Value.(*textureEntry)
		if !ok {
			m.lruList.Remove(elem)
			continue
		}

		tex := entry.texture
		m.removeEntryLocked(entry)
		tex.Close()
		m.evictionCount++

		Logger().Warn("evicted texture over budget",
			"label", tex.Label(), "bytes", entry.sizeBytes)
	}

	if m.usedBytes+requestedBytes > m.budgetBytes {
		return fmt.Errorf("%w: need %d bytes, %d available",
			ErrTextureBudgetExceeded, requestedBytes, m.budgetBytes-m.usedBytes)
	}
	return nil
}
