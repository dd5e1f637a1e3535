package world

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// Drop is an item spawned into the world.
type Drop struct {
	Location domain.Location
	Material domain.Material
}

// Memory is an in-memory world: a sparse block grid, per-player inventories
// and a message log. Unset blocks read as air.
type Memory struct {
	mu          sync.RWMutex
	blocks      map[domain.Location]domain.Material
	drops       []Drop
	inventories map[uuid.UUID]map[domain.Material]int
	messages    map[uuid.UUID][]string
}

// NewMemory creates an empty world.
func NewMemory() *Memory {
	return &Memory{
		blocks:      make(map[domain.Location]domain.Material),
		inventories: make(map[uuid.UUID]map[domain.Material]int),
		messages:    make(map[uuid.UUID][]string),
	}
}

func (w *Memory) BlockAt(loc domain.Location) domain.Material {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if m, ok := w.blocks[loc]; ok {
		return m
	}
	return domain.MaterialAir
}

func (w *Memory) SetBlock(loc domain.Location, m domain.Material) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if m == domain.MaterialAir {
		delete(w.blocks, loc)
		return
	}
	w.blocks[loc] = m
}

func (w *Memory) DropItem(loc domain.Location, m domain.Material) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.drops = append(w.drops, Drop{Location: loc, Material: m})
}

func (w *Memory) SendMessage(player uuid.UUID, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.messages[player] = append(w.messages[player], msg)
}

func (w *Memory) HasItem(player uuid.UUID, m domain.Material) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.inventories[player][m] > 0
}

// TakeItem removes n items of m. It removes nothing and returns false
// when the player holds fewer than n.
func (w *Memory) TakeItem(player uuid.UUID, m domain.Material, n int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv := w.inventories[player]
	if inv[m] < n {
		return false
	}
	inv[m] -= n
	if inv[m] == 0 {
		delete(inv, m)
	}
	return true
}

// SetInventory replaces the player's inventory.
func (w *Memory) SetInventory(player uuid.UUID, items map[domain.Material]int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv := make(map[domain.Material]int, len(items))
	for m, n := range items {
		if n > 0 {
			inv[m] = n
		}
	}
	w.inventories[player] = inv
}

// Give adds n items of m to the player's inventory.
func (w *Memory) Give(player uuid.UUID, m domain.Material, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inv := w.inventories[player]
	if inv == nil {
		inv = make(map[domain.Material]int)
		w.inventories[player] = inv
	}
	inv[m] += n
}

// Count returns how many items of m the player holds.
func (w *Memory) Count(player uuid.UUID, m domain.Material) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.inventories[player][m]
}

// Drops returns a copy of every spawned item.
func (w *Memory) Drops() []Drop {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Drop, len(w.drops))
	copy(out, w.drops)
	return out
}

// Messages returns a copy of the messages sent to a player.
func (w *Memory) Messages(player uuid.UUID) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.messages[player]))
	copy(out, w.messages[player])
	return out
}

// DrainMessages returns the messages queued for a player and clears them.
func (w *Memory) DrainMessages(player uuid.UUID) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := w.messages[player]
	delete(w.messages, player)
	return out
}
