package ppu

import (
	"testing"

	"github.com/hollowcart/nescore/pkg/cartridge/mapper"
)

func TestStatusReadClearsVBlankAndWriteToggle(t *testing.T) {
	p := New(nil)
	p.status = StatusVBlank
	p.w = 1

	got := p.ReadRegister(0x2002)
	if got&StatusVBlank == 0 {
		t.Fatal("the read that observes vblank should still report it set")
	}
	if p.status&StatusVBlank != 0 {
		t.Fatal("reading $2002 should clear StatusVBlank")
	}
	if p.w != 0 {
		t.Fatal("reading $2002 should reset the shared write-toggle")
	}
}

func TestOAMAddrAutoIncrementsOnDataWrite(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAB)
	if p.OAM[0x10] != 0xAB {
		t.Fatalf("OAM[$10] = $%02X, want $AB", p.OAM[0x10])
	}
	if p.oamAddr != 0x11 {
		t.Fatalf("oamAddr = $%02X, want $11 after a $2004 write", p.oamAddr)
	}
}

func TestScrollWriteTogglesBetweenXAndY(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2005, 0x7D) // X: coarse=15, fine=5
	if p.x != 0x7D&0x07 {
		t.Fatalf("x = %d, want %d", p.x, 0x7D&0x07)
	}
	if p.w != 1 {
		t.Fatal("first $2005 write should raise the write toggle")
	}
	p.WriteRegister(0x2005, 0x5E) // Y
	if p.w != 0 {
		t.Fatal("second $2005 write should lower the write toggle")
	}
}

func TestAddrWriteLatchesVOnSecondWrite(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	if p.v != 0x2108 {
		t.Fatalf("v = $%04X, want $2108", p.v)
	}
}

func TestRegisterMirrorEvery8Bytes(t *testing.T) {
	p := New(nil)
	p.WriteRegister(0x2003, 0x05)
	if p.oamAddr != 0x05 {
		t.Fatal("$2003 write should set oamAddr")
	}
	p.WriteRegister(0x200B, 0x09) // mirrors $2003
	if p.oamAddr != 0x09 {
		t.Fatalf("oamAddr = $%02X, want $09 via the $200B mirror of $2003", p.oamAddr)
	}
}

func TestTickAdvancesCycleAndScanlineAndWrapsIntoNewFrame(t *testing.T) {
	p := New(nil)
	for i := 0; i < 341; i++ {
		p.Tick()
	}
	if p.Cycle != 0 || p.Scanline != 1 {
		t.Fatalf("Cycle=%d Scanline=%d after 341 dots, want Cycle=0 Scanline=1", p.Cycle, p.Scanline)
	}

	// Scanlines 1-260 later the counter wraps to the pre-render line.
	for i := 0; i < 341*260; i++ {
		p.Tick()
	}
	if p.Cycle != 0 || p.Scanline != -1 || p.Frame != 1 {
		t.Fatalf("Cycle=%d Scanline=%d Frame=%d, want Cycle=0 Scanline=-1 Frame=1", p.Cycle, p.Scanline, p.Frame)
	}
}

func TestVBlankFlagAndNMIRaisedAtScanline241(t *testing.T) {
	p := New(nil)
	p.ctrl = CTRLNMIEnable
	for i := 0; i < 341*242; i++ {
		p.Tick()
	}
	if p.status&StatusVBlank == 0 {
		t.Fatal("StatusVBlank should be set once scanline 241 is reached")
	}
	if !p.NMIPending {
		t.Fatal("NMIPending should be latched when NMI generation is enabled at vblank")
	}
}

func TestVBlankSetsExactlyAtScanline241Dot1(t *testing.T) {
	p := New(nil)
	for i := 0; i < 341*241; i++ {
		p.Tick()
	}
	if p.Scanline != 241 || p.Cycle != 0 {
		t.Fatalf("Scanline=%d Cycle=%d after %d dots, want Scanline=241 Cycle=0", p.Scanline, p.Cycle, 341*241)
	}
	if p.status&StatusVBlank != 0 {
		t.Fatal("StatusVBlank must not be set yet at scanline 241 dot 0")
	}
	p.Tick()
	if p.Cycle != 1 {
		t.Fatalf("Cycle = %d, want 1", p.Cycle)
	}
	if p.status&StatusVBlank == 0 {
		t.Fatal("StatusVBlank should be set at scanline 241 dot 1")
	}
}

func TestOddFrameSkipsLastDotOfPreRenderLine(t *testing.T) {
	p := New(nil)
	p.mask = MaskBGShow
	p.Scanline = -1
	p.Cycle = 339
	p.Frame = 1

	p.Tick()
	if p.Cycle != 0 || p.Scanline != 0 {
		t.Fatalf("Cycle=%d Scanline=%d, want the pre-render line to end one dot early on an odd frame", p.Cycle, p.Scanline)
	}
}

func TestEvenFrameDoesNotSkipTheDot(t *testing.T) {
	p := New(nil)
	p.mask = MaskBGShow
	p.Scanline = -1
	p.Cycle = 339
	p.Frame = 0

	p.Tick()
	if p.Scanline != -1 || p.Cycle != 340 {
		t.Fatalf("Cycle=%d Scanline=%d, want the pre-render line to run its full 341 dots on an even frame", p.Cycle, p.Scanline)
	}
}

type stubMapper struct{ scanlines int }

func (m *stubMapper) ReadPRG(addr uint16) uint8         { return 0 }
func (m *stubMapper) WritePRG(addr uint16, value uint8) {}
func (m *stubMapper) ReadCHR(addr uint16) uint8         { return 0 }
func (m *stubMapper) WriteCHR(addr uint16, value uint8) {}
func (m *stubMapper) Mirroring() mapper.Mirroring       { return mapper.MirroringHorizontal }
func (m *stubMapper) Scanline()                         { m.scanlines++ }
func (m *stubMapper) IRQPending() bool                  { return false }
func (m *stubMapper) ClearIRQ()                         {}

func TestScanlineHookFiresOncePerVisibleScanlineWhenRenderingEnabled(t *testing.T) {
	p := New(nil)
	p.mask = MaskBGShow
	m := &stubMapper{}
	p.SetMapper(m)
	for i := 0; i < 341*3; i++ {
		p.Tick()
	}
	if m.scanlines != 3 {
		t.Fatalf("mapper.Scanline() called %d times, want 3 (once per visible scanline)", m.scanlines)
	}
}
