// Package ppu implements the PPU's register file and dot/scanline
// timing. Tile and sprite compositing to a framebuffer is explicitly
// out of scope here; this package only owns what MainBus's PPU
// register window and the mapper's scanline IRQ hook need to exist.
package ppu

import (
	"github.com/hollowcart/nescore/pkg/bus"
	"github.com/hollowcart/nescore/pkg/cartridge/mapper"
	"github.com/hollowcart/nescore/pkg/logger"
)

// PPUCTRL flags.
const (
	CTRLNameTable   = 0x03
	CTRLIncrement   = 0x04
	CTRLSpriteTable = 0x08
	CTRLBGTable     = 0x10
	CTRLSpriteSize  = 0x20
	CTRLMasterSlave = 0x40
	CTRLNMIEnable   = 0x80
)

// PPUMASK flags.
const (
	MaskGreyscale      = 0x01
	MaskBGLeft         = 0x02
	MaskSpriteLeft     = 0x04
	MaskBGShow         = 0x08
	MaskSpriteShow     = 0x10
	MaskRedEmphasize   = 0x20
	MaskGreenEmphasize = 0x40
	MaskBlueEmphasize  = 0x80
)

// PPUSTATUS flags.
const (
	StatusSprite0Hit = 0x40
	StatusVBlank     = 0x80
)

// PPU is the register-file and timing half of the picture processor.
type PPU struct {
	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	OAM     [256]uint8

	// Loopy-style internal registers: v/t are 15-bit VRAM addresses, x
	// is fine X scroll, w is the shared write-toggle for $2005/$2006.
	v, t uint16
	x    uint8
	w    uint8

	readBuffer uint8

	Cycle    int
	Scanline int
	Frame    uint64

	// NMIPending is latched true the dot vblank starts if NMI
	// generation is enabled in PPUCTRL; the emulator clears it and
	// forwards it to the CPU.
	NMIPending bool

	Bus    *bus.PictureBus
	Mapper mapper.Mapper
}

// New creates a PPU wired to the given address space and cartridge
// mapper. Mapper may be nil until a cartridge is loaded.
func New(picture *bus.PictureBus) *PPU {
	return &PPU{Bus: picture}
}

// Reset returns the PPU to its power-on register state and clears the
// shared write toggle w. v/t/x and OAM are left untouched, matching
// real hardware's reset behavior.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.w = 0
	p.Cycle = 0
	p.Scanline = 0
	p.NMIPending = false
}

// SetMapper attaches the cartridge mapper used for the scanline IRQ
// hook and applies its current mirroring to the PictureBus.
func (p *PPU) SetMapper(m mapper.Mapper) {
	p.Mapper = m
	if p.Bus != nil {
		p.Bus.UpdateMirroring(m.Mirroring())
	}
}

// renderingEnabled reports whether background or sprite rendering is
// turned on, the gate real hardware uses for scroll-register copies
// and the mapper scanline hook.
func (p *PPU) renderingEnabled() bool {
	return p.mask&(MaskBGShow|MaskSpriteShow) != 0
}

// Tick advances the PPU by one dot (1/3 of a CPU cycle).
func (p *PPU) Tick() {
	if p.Scanline == -1 {
		if p.Cycle == 304 && p.renderingEnabled() {
			p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
		}
	}

	if p.Scanline >= 0 && p.Scanline < 240 && p.Cycle == 0 && p.renderingEnabled() {
		p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
	}

	p.Cycle++

	if p.Scanline == 241 && p.Cycle == 1 {
		p.status |= StatusVBlank
		if p.ctrl&CTRLNMIEnable != 0 {
			p.NMIPending = true
		}
	}

	// On odd frames the pre-render line is one dot short: real hardware
	// skips the idle cycle at the end of it while rendering is enabled.
	skipDot := p.Scanline == -1 && p.Cycle == 340 && p.Frame%2 == 1 && p.renderingEnabled()

	if p.Cycle >= 341 || skipDot {
		p.Cycle = 0
		p.Scanline++

		if p.Scanline >= 0 && p.Scanline < 240 && p.renderingEnabled() && p.Mapper != nil {
			p.Mapper.Scanline()
		}

		if p.Scanline >= 261 {
			p.Scanline = -1
			p.Frame++
			p.status &^= StatusVBlank
			p.status &^= StatusSprite0Hit
		}
	}
}

// ReadRegister reads one of the 8 memory-mapped PPU registers.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 0x2007 {
	case 0x2002:
		value := p.status
		p.status &^= StatusVBlank
		p.w = 0
		return value

	case 0x2004:
		return p.OAM[p.oamAddr]

	case 0x2007:
		var value uint8
		if p.v >= 0x3F00 {
			value = p.readVRAM(p.v)
			p.readBuffer = p.readVRAM(p.v - 0x1000)
		} else {
			value = p.readBuffer
			p.readBuffer = p.readVRAM(p.v)
		}
		p.advanceVRAMAddr()
		return value

	default:
		return 0
	}
}

// WriteRegister writes one of the 8 memory-mapped PPU registers.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr & 0x2007 {
	case 0x2000:
		p.ctrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)

	case 0x2001:
		p.mask = value

	case 0x2003:
		p.oamAddr = value

	case 0x2004:
		p.OAM[p.oamAddr] = value
		p.oamAddr++

	case 0x2005:
		if p.w == 0 {
			p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
			p.x = value & 0x07
			p.w = 1
		} else {
			p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
			p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
			p.w = 0
		}

	case 0x2006:
		if p.w == 0 {
			p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
			p.w = 1
		} else {
			p.t = (p.t & 0xFF00) | uint16(value)
			p.v = p.t
			p.w = 0
		}

	case 0x2007:
		p.writeVRAM(p.v, value)
		p.advanceVRAMAddr()
	}
}

// WriteOAMByte writes the next sequential OAM byte, for OAM DMA: real
// hardware starts the transfer at whatever OAMADDR already holds and
// lets it wrap, rather than resetting to 0 first.
func (p *PPU) WriteOAMByte(value uint8) {
	p.OAM[p.oamAddr] = value
	p.oamAddr++
}

func (p *PPU) advanceVRAMAddr() {
	if p.ctrl&CTRLIncrement != 0 {
		p.v += 32
	} else {
		p.v++
	}
}

func (p *PPU) readVRAM(addr uint16) uint8 {
	if p.Bus == nil {
		return 0
	}
	return p.Bus.Read(addr)
}

func (p *PPU) writeVRAM(addr uint16, value uint8) {
	if p.Bus == nil {
		return
	}
	p.Bus.Write(addr, value)
	logger.LogPPU("write $%04X = $%02X", addr, value)
}

// Status reports the live PPUSTATUS byte, for tests and debug tooling.
func (p *PPU) Status() uint8 { return p.status }
