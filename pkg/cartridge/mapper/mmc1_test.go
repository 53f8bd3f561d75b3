package mapper

import "testing"

func writeMMC1(m *MMC1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		m.WritePRG(addr, (value>>uint(i))&1)
	}
}

func TestMMC1ShiftRegisterAssemblesFiveBitWrites(t *testing.T) {
	prg := make([]uint8, 0x4000*4)
	m := NewMMC1(&CartridgeData{PRGROM: prg})

	writeMMC1(m, 0x8000, 0x0F) // control: CHR mode 0, PRG mode 3 (fixed last)
	if m.control != 0x0F {
		t.Fatalf("control = $%02X, want $0F", m.control)
	}
}

func TestMMC1ResetBitAbortsShiftAndForcesPRGMode3(t *testing.T) {
	prg := make([]uint8, 0x4000*4)
	m := NewMMC1(&CartridgeData{PRGROM: prg})
	m.prgMode = 0

	m.WritePRG(0x8000, 0x80) // bit 7 set: reset
	if m.prgMode != 3 {
		t.Fatalf("prgMode = %d, want 3 after a reset write", m.prgMode)
	}
	if m.shiftCount != 0 {
		t.Fatalf("shiftCount = %d, want 0 after a reset write", m.shiftCount)
	}
}

func TestMMC1PRGMode3FixesLastBank(t *testing.T) {
	prg := make([]uint8, 0x4000*4)
	prg[0x4000*3] = 0x55
	m := NewMMC1(&CartridgeData{PRGROM: prg}) // power-on: prgMode 3

	if got := m.ReadPRG(0xC000); got != 0x55 {
		t.Fatalf("ReadPRG($C000) = $%02X, want $55 (fixed last bank under PRG mode 3)", got)
	}
}

func TestMMC1MirroringControlBits(t *testing.T) {
	m := NewMMC1(&CartridgeData{PRGROM: make([]uint8, 0x4000)})
	writeMMC1(m, 0x8000, 0x02) // control low bits = 2 -> vertical
	if m.Mirroring() != MirroringVertical {
		t.Fatalf("Mirroring() = %v, want vertical", m.Mirroring())
	}
}
