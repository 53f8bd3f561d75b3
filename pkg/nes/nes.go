// Package nes wires the CPU, PPU, APU, cartridge mapper and
// controllers together into the single public entry point a front end
// drives: load a ROM, reset, and step one CPU cycle at a time.
package nes

import (
	"github.com/hollowcart/nescore/pkg/apu"
	"github.com/hollowcart/nescore/pkg/bus"
	"github.com/hollowcart/nescore/pkg/cartridge"
	"github.com/hollowcart/nescore/pkg/cpu"
	"github.com/hollowcart/nescore/pkg/input"
	"github.com/hollowcart/nescore/pkg/logger"
	"github.com/hollowcart/nescore/pkg/ppu"
)

// Emulator owns one NES system: its buses, its chips and the cartridge
// currently plugged into them.
type Emulator struct {
	CPU *cpu.CPU
	PPU *ppu.PPU
	APU *apu.APU

	MainBus    *bus.MainBus
	PictureBus *bus.PictureBus

	Cartridge *cartridge.Cartridge

	Controllers [2]*input.Controller

	Cycles uint64

	framebuffer [256 * 240]uint32
}

// New creates an Emulator with no cartridge loaded. Load must be
// called before Reset/Cycle do anything useful.
func New() *Emulator {
	e := &Emulator{
		CPU:         cpu.New(),
		APU:         apu.New(),
		MainBus:     bus.NewMainBus(),
		PictureBus:  bus.NewPictureBus(),
		Controllers: [2]*input.Controller{input.New(), input.New()},
	}
	e.PPU = ppu.New(e.PictureBus)

	e.MainBus.PPU = e.PPU
	e.MainBus.APU = e.APU
	e.MainBus.Controllers[0] = e.Controllers[0]
	e.MainBus.Controllers[1] = e.Controllers[1]

	return e
}

// Load parses an iNES image and plugs it into both buses, replacing
// whatever cartridge was previously loaded.
func (e *Emulator) Load(rom []byte) error {
	cart, err := cartridge.Load(rom)
	if err != nil {
		return err
	}

	e.Cartridge = cart
	e.MainBus.Cartridge = cart
	e.PictureBus.Cartridge = cart
	e.PPU.SetMapper(cart.Mapper)

	logger.LogInfo("loaded ROM: mapper %d, %d KB PRG, %d KB CHR",
		cart.Header.MapperNumber(), len(cart.PRGROM)/1024, len(cart.CHRROM)/1024)
	return nil
}

// Reset performs the power-on/reset sequence across every chip.
func (e *Emulator) Reset() {
	e.CPU.Reset(e.MainBus)
	e.PPU.Reset()
	e.APU.Reset()
	e.Cycles = 0
}

// Cycle advances the system by one CPU cycle: one CPU tick, three PPU
// dots, and the NMI/IRQ edges those dots and the mapper's scanline
// hook may raise.
func (e *Emulator) Cycle() {
	e.CPU.Cycle(e.MainBus)

	for i := 0; i < 3; i++ {
		e.PPU.Tick()
		if e.PPU.NMIPending {
			e.PPU.NMIPending = false
			e.CPU.TriggerNMI()
		}
	}

	if e.Cartridge != nil {
		e.CPU.SetIRQLine(e.Cartridge.Mapper.IRQPending())
	}

	e.Cycles++
}

// Framebuffer is a placeholder video surface: this core emulates CPU
// and memory-mapped state faithfully but does not implement tile and
// sprite compositing, so the framebuffer it returns is always blank.
// It exists so front ends have a stable surface to present while that
// is true.
func (e *Emulator) Framebuffer() *[256 * 240]uint32 {
	return &e.framebuffer
}

// ControllerPress marks a button held on the given controller port
// (0 or 1).
func (e *Emulator) ControllerPress(port int, button input.Button) {
	if port < 0 || port > 1 {
		return
	}
	e.Controllers[port].SetButton(button, true)
}

// ControllerRelease marks a button released on the given controller
// port (0 or 1).
func (e *Emulator) ControllerRelease(port int, button input.Button) {
	if port < 0 || port > 1 {
		return
	}
	e.Controllers[port].SetButton(button, false)
}
