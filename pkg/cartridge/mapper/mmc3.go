package mapper

import "github.com/hollowcart/nescore/pkg/logger"

// MMC3 is mapper 4. A bank-select/bank-data register pair at
// $8000/$8001 distributes writes to eight internal bank registers (two
// 2KB/1KB CHR modes, four PRG windows); $A000 picks mirroring, $A001
// protects PRG RAM, and $C000/$C001/$E000/$E001 drive a scanline IRQ
// counter clocked through Scanline, once per visible scanline.
type MMC3 struct {
	data *CartridgeData

	bankRegisters [8]uint8
	bankSelect    uint8
	mirroringBit  uint8
	prgRAMProtect uint8

	irqReloadValue uint8
	irqCounter     uint8
	irqEnabled     bool
	irqPending     bool
	irqReloadFlag  bool

	prgBankCount uint8
	chrBankCount uint8
}

// NewMMC3 creates a new MMC3 instance with R6/R7 defaulted to the last
// two PRG banks, matching the reset state real MMC3 boards present
// before any register write.
func NewMMC3(data *CartridgeData) *MMC3 {
	m := &MMC3{
		data:          data,
		prgBankCount:  uint8(len(data.PRGROM) / 8192),
		prgRAMProtect: 0x80,
	}

	switch {
	case len(data.CHRROM) > 0:
		m.chrBankCount = uint8(len(data.CHRROM) / 1024)
	case len(data.CHRRAM) > 0:
		m.chrBankCount = uint8(len(data.CHRRAM) / 1024)
	default:
		m.chrBankCount = 8
	}

	if m.prgBankCount >= 2 {
		m.bankRegisters[6] = m.prgBankCount - 2
		m.bankRegisters[7] = m.prgBankCount - 1
	}
	for i := 0; i < 6 && m.chrBankCount > 0; i++ {
		m.bankRegisters[i] = uint8(i) % m.chrBankCount
	}

	return m
}

func (m *MMC3) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr <= 0x7FFF:
		if len(m.data.PRGRAM) > 0 && m.prgRAMProtect&0x80 != 0 {
			return m.data.PRGRAM[addr-0x6000]
		}
		return 0

	case addr >= 0x8000:
		prgMode := (m.bankSelect >> 6) & 1
		var bank uint8
		switch {
		case addr <= 0x9FFF:
			if prgMode == 0 {
				bank = m.bankRegisters[6]
			} else {
				bank = m.prgBankCount - 2
			}
		case addr <= 0xBFFF:
			bank = m.bankRegisters[7]
		case addr <= 0xDFFF:
			if prgMode == 0 {
				bank = m.prgBankCount - 2
			} else {
				bank = m.bankRegisters[6]
			}
		default:
			bank = m.prgBankCount - 1
		}
		if bank >= m.prgBankCount {
			bank = m.prgBankCount - 1
		}
		offset := uint32(bank)*0x2000 + uint32(addr&0x1FFF)
		if offset < uint32(len(m.data.PRGROM)) {
			return m.data.PRGROM[offset]
		}
	}
	return 0
}

func (m *MMC3) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr <= 0x7FFF:
		if len(m.data.PRGRAM) > 0 && m.prgRAMProtect&0x80 != 0 && m.prgRAMProtect&0x40 == 0 {
			m.data.PRGRAM[addr-0x6000] = value
		}

	case addr >= 0x8000:
		switch addr & 0xE001 {
		case 0x8000:
			m.bankSelect = value
		case 0x8001:
			reg := m.bankSelect & 0x07
			if reg >= 6 {
				if m.prgBankCount > 0 {
					m.bankRegisters[reg] = value % m.prgBankCount
				}
			} else if m.chrBankCount > 0 {
				m.bankRegisters[reg] = value % m.chrBankCount
			} else {
				m.bankRegisters[reg] = value
			}
		case 0xA000:
			m.mirroringBit = value & 1
		case 0xA001:
			m.prgRAMProtect = value
		case 0xC000:
			m.irqReloadValue = value
		case 0xC001:
			m.irqReloadFlag = true
			m.irqCounter = 0
		case 0xE000:
			m.irqEnabled = false
			m.irqPending = false
		case 0xE001:
			m.irqEnabled = true
		}
	}
}

func (m *MMC3) chrBank(addr uint16) uint8 {
	chrMode := (m.bankSelect >> 7) & 1
	if chrMode == 0 {
		switch {
		case addr < 0x800:
			return (m.bankRegisters[0] &^ 1) + uint8(addr/0x400)
		case addr < 0x1000:
			return (m.bankRegisters[1] &^ 1) + uint8((addr-0x800)/0x400)
		default:
			return m.bankRegisters[2+(addr-0x1000)/0x400]
		}
	}
	switch {
	case addr < 0x1000:
		return m.bankRegisters[2+addr/0x400]
	case addr < 0x1800:
		return (m.bankRegisters[0] &^ 1) + uint8((addr-0x1000)/0x400)
	default:
		return (m.bankRegisters[1] &^ 1) + uint8((addr-0x1800)/0x400)
	}
}

func (m *MMC3) ReadCHR(addr uint16) uint8 {
	if addr >= 0x2000 {
		return 0
	}
	bank := m.chrBank(addr)
	if m.chrBankCount > 0 {
		bank %= m.chrBankCount
	}
	offset := uint32(bank)*0x400 + uint32(addr&0x3FF)
	if len(m.data.CHRROM) > 0 {
		if offset < uint32(len(m.data.CHRROM)) {
			return m.data.CHRROM[offset]
		}
		return 0
	}
	if offset < uint32(len(m.data.CHRRAM)) {
		return m.data.CHRRAM[offset]
	}
	return 0
}

func (m *MMC3) WriteCHR(addr uint16, value uint8) {
	if addr >= 0x2000 || len(m.data.CHRRAM) == 0 {
		return
	}
	bank := m.chrBank(addr)
	if m.chrBankCount > 0 {
		bank %= m.chrBankCount
	}
	offset := uint32(bank)*0x400 + uint32(addr&0x3FF)
	if offset < uint32(len(m.data.CHRRAM)) {
		m.data.CHRRAM[offset] = value
	}
}

// Scanline clocks the IRQ counter. The PPU calls this once per visible
// scanline while rendering is enabled.
func (m *MMC3) Scanline() {
	if m.irqReloadFlag {
		m.irqCounter = m.irqReloadValue
		m.irqReloadFlag = false
	} else if m.irqCounter == 0 {
		m.irqCounter = m.irqReloadValue
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
		logger.LogMapper("MMC3 IRQ asserted (reload=%d)", m.irqReloadValue)
	}
}

func (m *MMC3) Mirroring() Mirroring {
	if m.mirroringBit == 0 {
		return MirroringVertical
	}
	return MirroringHorizontal
}

func (m *MMC3) IRQPending() bool { return m.irqPending }
func (m *MMC3) ClearIRQ()        { m.irqPending = false }
