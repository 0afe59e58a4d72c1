package ecs

// SlotID encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments on release to
// invalidate stale handles. Generations start at 1 so the zero SlotID never
// names a live slot.
type SlotID uint64

func NewSlotID(index uint32, generation uint32) SlotID {
	return SlotID(uint64(generation)<<32 | uint64(index))
}

func (id SlotID) Index() uint32      { return uint32(id) }
func (id SlotID) Generation() uint32 { return uint32(id >> 32) }
func (id SlotID) IsZero() bool       { return id == 0 }
