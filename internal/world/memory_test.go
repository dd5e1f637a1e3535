package world

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

var spot = domain.Location{
	World:    domain.WorldRef{Namespace: "minecraft", Name: "overworld"},
	Position: domain.Position{X: 1, Y: 2, Z: 3},
}

func TestMemory_Blocks(t *testing.T) {
	w := NewMemory()
	assert.Equal(t, domain.MaterialAir, w.BlockAt(spot))

	w.SetBlock(spot, domain.MaterialQuartzBlock)
	assert.Equal(t, domain.MaterialQuartzBlock, w.BlockAt(spot))

	w.SetBlock(spot, domain.MaterialAir)
	assert.Equal(t, domain.MaterialAir, w.BlockAt(spot))

	w.DropItem(spot, domain.MaterialRedstoneLamp)
	assert.Equal(t, []Drop{{Location: spot, Material: domain.MaterialRedstoneLamp}}, w.Drops())
}

func TestMemory_Inventory(t *testing.T) {
	w := NewMemory()
	p := uuid.New()

	assert.False(t, w.HasItem(p, domain.MaterialRedstoneBlock))
	assert.False(t, w.TakeItem(p, domain.MaterialRedstoneBlock, 1))

	w.SetInventory(p, map[domain.Material]int{domain.MaterialRedstoneBlock: 1, domain.MaterialQuartzBlock: 0})
	assert.True(t, w.HasItem(p, domain.MaterialRedstoneBlock))
	assert.False(t, w.HasItem(p, domain.MaterialQuartzBlock))

	w.Give(p, domain.MaterialRedstoneBlock, 2)
	assert.Equal(t, 3, w.Count(p, domain.MaterialRedstoneBlock))

	assert.False(t, w.TakeItem(p, domain.MaterialRedstoneBlock, 4))
	assert.Equal(t, 3, w.Count(p, domain.MaterialRedstoneBlock))

	assert.True(t, w.TakeItem(p, domain.MaterialRedstoneBlock, 3))
	assert.False(t, w.HasItem(p, domain.MaterialRedstoneBlock))
}

func TestMemory_Messages(t *testing.T) {
	w := NewMemory()
	a, b := uuid.New(), uuid.New()

	w.SendMessage(a, "one")
	w.SendMessage(a, "two")

	assert.Equal(t, []string{"one", "two"}, w.Messages(a))
	assert.Empty(t, w.Messages(b))

	assert.Equal(t, []string{"one", "two"}, w.DrainMessages(a))
	assert.Empty(t, w.DrainMessages(a))
	assert.Empty(t, w.Messages(a))
}

var (
	_ Adapter   = (*Memory)(nil)
	_ Inventory = (*Memory)(nil)
)
