package bus

import "testing"

type stubPPU struct {
	regs    [8]uint8
	oam     []uint8
	oamAddr int
}

func (p *stubPPU) ReadRegister(addr uint16) uint8 { return p.regs[addr&0x07] }
func (p *stubPPU) WriteRegister(addr uint16, v uint8) {
	p.regs[addr&0x07] = v
}
func (p *stubPPU) WriteOAMByte(v uint8) { p.oam = append(p.oam, v) }

type stubAPU struct{ last uint16 }

func (a *stubAPU) ReadRegister(addr uint16) uint8     { return 0 }
func (a *stubAPU) WriteRegister(addr uint16, v uint8) { a.last = addr }

type stubCart struct{ prg [0x10000]uint8 }

func (c *stubCart) ReadPRG(addr uint16) uint8         { return c.prg[addr] }
func (c *stubCart) WritePRG(addr uint16, value uint8) { c.prg[addr] = value }

type stubController struct{ written uint8 }

func (c *stubController) Read() uint8        { return 0x41 }
func (c *stubController) Write(value uint8)  { c.written = value }

func TestRAMMirroring(t *testing.T) {
	b := NewMainBus()
	b.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0800, 0x1000, 0x1800} {
		if got := b.Read(mirror); got != 0x42 {
			t.Fatalf("Read($%04X) = $%02X, want $42 (RAM mirror of $0000)", mirror, got)
		}
	}
}

func TestPPURegisterMirroringEvery8Bytes(t *testing.T) {
	ppu := &stubPPU{}
	b := NewMainBus()
	b.PPU = ppu
	b.Write(0x2000, 0x55)
	if ppu.regs[0] != 0x55 {
		t.Fatalf("PPU reg[0] = $%02X, want $55", ppu.regs[0])
	}
	b.Write(0x2008, 0x66) // mirrors $2000
	if ppu.regs[0] != 0x66 {
		t.Fatalf("write to $2008 should alias PPU reg 0, got $%02X", ppu.regs[0])
	}
}

func TestOAMDMACopies256BytesAndStalls(t *testing.T) {
	ppu := &stubPPU{}
	b := NewMainBus()
	b.PPU = ppu
	for i := 0; i < 256; i++ {
		b.ram[i] = uint8(i)
	}
	b.Write(0x4014, 0x00) // DMA from page $00 (the RAM mirror)
	if len(ppu.oam) != 256 {
		t.Fatalf("OAM DMA copied %d bytes, want 256", len(ppu.oam))
	}
	for i, v := range ppu.oam {
		if v != uint8(i) {
			t.Fatalf("OAM[%d] = $%02X, want $%02X", i, v, uint8(i))
		}
	}
	if stall := b.TakeDMAStall(); stall != 513 {
		t.Fatalf("TakeDMAStall() = %d, want 513", stall)
	}
	if stall := b.TakeDMAStall(); stall != 0 {
		t.Fatalf("second TakeDMAStall() = %d, want 0 (one-shot)", stall)
	}
}

func TestControllerStrobeWritesBothPorts(t *testing.T) {
	c0, c1 := &stubController{}, &stubController{}
	b := NewMainBus()
	b.Controllers[0] = c0
	b.Controllers[1] = c1
	b.Write(0x4016, 0x01)
	if c0.written != 0x01 || c1.written != 0x01 {
		t.Fatalf("strobe write to $4016 should reach both controllers, got c0=%d c1=%d", c0.written, c1.written)
	}
}

func TestUnmappedExpansionRegionReadsZero(t *testing.T) {
	b := NewMainBus()
	if got := b.Read(0x401A); got != 0 {
		t.Fatalf("Read($401A) = $%02X, want 0 (disabled APU/IO test register range)", got)
	}
}

func TestCartridgeServesAboveExpansionRegion(t *testing.T) {
	cart := &stubCart{}
	cart.prg[0x8000] = 0x99
	b := NewMainBus()
	b.Cartridge = cart
	if got := b.Read(0x8000); got != 0x99 {
		t.Fatalf("Read($8000) = $%02X, want $99 from cartridge", got)
	}
}
