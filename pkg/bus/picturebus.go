package bus

import "github.com/hollowcart/nescore/pkg/cartridge/mapper"

// CHRCartridge is the CHR-side collaborator PictureBus defers
// $0000-$1FFF to.
type CHRCartridge interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
}

// PictureBus is the PPU-visible address space: CHR from the cartridge
// over $0000-$1FFF, four logical name tables aliased onto 2 KiB of
// internal VRAM over $2000-$2FFF (mirrored through $3EFF), and a 32-byte
// palette RAM over $3F00-$3FFF.
type PictureBus struct {
	nameTables [2048]uint8
	palette    [32]uint8

	// offsets[i] is the byte offset into nameTables that logical
	// name table i (0-3) is aliased to.
	offsets [4]uint16

	Cartridge CHRCartridge
}

// NewPictureBus creates a PictureBus with horizontal mirroring; call
// UpdateMirroring once a cartridge is attached to pick up its real mode.
func NewPictureBus() *PictureBus {
	b := &PictureBus{}
	b.UpdateMirroring(mapper.MirroringHorizontal)
	return b
}

// UpdateMirroring recomputes the logical-to-physical name-table offsets
// for the given mode. This core has no separate cartridge VRAM path, so
// four-screen mirroring is laid out the same as horizontal mirroring.
func (b *PictureBus) UpdateMirroring(m mapper.Mirroring) {
	switch m {
	case mapper.MirroringHorizontal:
		b.offsets = [4]uint16{0x000, 0x000, 0x400, 0x400}
	case mapper.MirroringVertical:
		b.offsets = [4]uint16{0x000, 0x400, 0x000, 0x400}
	case mapper.MirroringOneScreenLower:
		b.offsets = [4]uint16{0x000, 0x000, 0x000, 0x000}
	case mapper.MirroringOneScreenHigher:
		b.offsets = [4]uint16{0x400, 0x400, 0x400, 0x400}
	case mapper.MirroringFourScreen:
		b.offsets = [4]uint16{0x000, 0x000, 0x400, 0x400}
	}
}

// Read returns the byte at addr, a 14-bit PPU address.
func (b *PictureBus) Read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if b.Cartridge != nil {
			return b.Cartridge.ReadCHR(addr)
		}
		return 0

	case addr < 0x3F00:
		mirrored := (addr - 0x2000) & 0x0FFF // $3000-$3EFF mirrors $2000-$2EFF
		table := mirrored / 0x400
		offset := mirrored % 0x400
		return b.nameTables[b.offsets[table]+offset]

	default:
		return b.palette[paletteIndex(addr)]
	}
}

// Write stores value at addr.
func (b *PictureBus) Write(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if b.Cartridge != nil {
			b.Cartridge.WriteCHR(addr, value)
		}

	case addr < 0x3F00:
		mirrored := (addr - 0x2000) & 0x0FFF // $3000-$3EFF mirrors $2000-$2EFF
		table := mirrored / 0x400
		offset := mirrored % 0x400
		b.nameTables[b.offsets[table]+offset] = value

	default:
		b.palette[paletteIndex(addr)] = value
	}
}

// paletteIndex applies the sprite/background backdrop-color aliasing:
// entries $10/$14/$18/$1C always read back whatever was written to
// $00/$04/$08/$0C respectively.
func paletteIndex(addr uint16) uint16 {
	index := addr & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	return index
}
