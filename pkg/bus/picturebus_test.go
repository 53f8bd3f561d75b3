package bus

import (
	"testing"

	"github.com/hollowcart/nescore/pkg/cartridge/mapper"
)

type stubCHRCartridge struct {
	chr [0x2000]uint8
}

func (c *stubCHRCartridge) ReadCHR(addr uint16) uint8         { return c.chr[addr] }
func (c *stubCHRCartridge) WriteCHR(addr uint16, value uint8) { c.chr[addr] = value }

func TestPictureBusReadsCartridgeCHR(t *testing.T) {
	b := NewPictureBus()
	cart := &stubCHRCartridge{}
	cart.chr[0x0100] = 0x42
	b.Cartridge = cart

	if got := b.Read(0x0100); got != 0x42 {
		t.Fatalf("Read($0100) = $%02X, want $42", got)
	}
}

func TestPictureBus3000MirrorsNameTableRegionWithoutPanicking(t *testing.T) {
	b := NewPictureBus()
	b.UpdateMirroring(mapper.MirroringHorizontal)

	b.Write(0x2000, 0x11)
	if got := b.Read(0x3000); got != 0x11 {
		t.Fatalf("Read($3000) = $%02X, want $11 ($3000 must mirror $2000)", got)
	}

	b.Write(0x3EFF, 0x22)
	if got := b.Read(0x2EFF); got != 0x22 {
		t.Fatalf("Read($2EFF) = $%02X, want $22 ($3EFF must mirror $2EFF)", got)
	}
}

func TestPictureBusHorizontalMirroringAliasesTables(t *testing.T) {
	b := NewPictureBus()
	b.UpdateMirroring(mapper.MirroringHorizontal)

	b.Write(0x2000, 0xAA) // table 0
	if got := b.Read(0x2400); got != 0xAA {
		t.Fatalf("Read($2400) = $%02X, want $AA (table 1 aliases table 0 under horizontal mirroring)", got)
	}
	b.Write(0x2800, 0xBB) // table 2
	if got := b.Read(0x2C00); got != 0xBB {
		t.Fatalf("Read($2C00) = $%02X, want $BB (table 3 aliases table 2 under horizontal mirroring)", got)
	}
}

func TestPictureBusVerticalMirroringAliasesTables(t *testing.T) {
	b := NewPictureBus()
	b.UpdateMirroring(mapper.MirroringVertical)

	b.Write(0x2000, 0xCC) // table 0
	if got := b.Read(0x2800); got != 0xCC {
		t.Fatalf("Read($2800) = $%02X, want $CC (table 2 aliases table 0 under vertical mirroring)", got)
	}
}

func TestPictureBusPaletteBackdropAliasing(t *testing.T) {
	b := NewPictureBus()
	b.Write(0x3F00, 0x0F)
	if got := b.Read(0x3F10); got != 0x0F {
		t.Fatalf("Read($3F10) = $%02X, want $0F ($3F10 aliases $3F00)", got)
	}
	b.Write(0x3F10, 0x01)
	if got := b.Read(0x3F00); got != 0x01 {
		t.Fatalf("Read($3F00) = $%02X, want $01 (write through the $3F10 alias)", got)
	}
}
