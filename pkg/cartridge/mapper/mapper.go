// Package mapper implements the cartridge-resident bank-switching logic
// that virtualizes PRG and CHR address space for the handful of boards
// this core targets: NROM, MMC1, UxROM, CNROM and MMC3.
package mapper

import "fmt"

// Mirroring is the name-table mirroring mode a mapper reports. Some
// boards (MMC1, MMC3) can change this at runtime in response to PRG
// writes; others (NROM, UxROM, CNROM) report a fixed mode decided at
// load time from the iNES header.
type Mirroring int

const (
	MirroringHorizontal Mirroring = iota
	MirroringVertical
	MirroringOneScreenLower
	MirroringOneScreenHigher
	MirroringFourScreen
)

func (m Mirroring) String() string {
	switch m {
	case MirroringHorizontal:
		return "horizontal"
	case MirroringVertical:
		return "vertical"
	case MirroringOneScreenLower:
		return "one-screen-lower"
	case MirroringOneScreenHigher:
		return "one-screen-higher"
	case MirroringFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}

// Mapper is the capability set the CPU/bus layer consumes. It is kept
// small and flat rather than an inheritance hierarchy: one concrete type
// per mapper id, all satisfying the same trait.
type Mapper interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Mirroring() Mirroring

	// Scanline is the optional cycle-counted IRQ hook. Boards without a
	// scanline counter (NROM, MMC1, UxROM, CNROM) implement it as a no-op.
	Scanline()
	IRQPending() bool
	ClearIRQ()
}

// CartridgeData is the raw ROM/RAM image a mapper banks over, plus the
// mirroring mode parsed from the iNES header (the starting mirroring
// for boards that can later change it, and the permanent mirroring for
// boards that can't).
type CartridgeData struct {
	PRGROM []uint8
	CHRROM []uint8
	PRGRAM []uint8
	CHRRAM []uint8

	HeaderMirroring Mirroring
}

// UnsupportedMapperError reports a mapper id this core has no variant for.
type UnsupportedMapperError struct {
	ID uint8
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("unsupported mapper: %d", e.ID)
}

// New constructs the Mapper variant for the given iNES mapper number.
func New(mapperNumber uint8, data *CartridgeData) (Mapper, error) {
	switch mapperNumber {
	case 0:
		return NewNROM(data), nil
	case 1:
		return NewMMC1(data), nil
	case 2:
		return NewUxROM(data), nil
	case 3:
		return NewCNROM(data), nil
	case 4:
		return NewMMC3(data), nil
	default:
		return nil, &UnsupportedMapperError{ID: mapperNumber}
	}
}
