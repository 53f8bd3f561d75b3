// Package cpu implements a cycle-stepped MOS 6502 interpreter: register
// file, flag set, the five-family opcode dispatch, interrupt servicing
// and the per-cycle tick model that drives it all.
package cpu

import "github.com/hollowcart/nescore/pkg/logger"

// Bus is the address space the CPU drives. TakeDMAStall lets MainBus
// report a pending OAM-DMA stall so Cycle can account for it without
// the CPU needing to know anything about DMA itself.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	TakeDMAStall() int
}

// Status flag bits, packed into P.
const (
	FlagCarry     = 1 << 0
	FlagZero      = 1 << 1
	FlagInterrupt = 1 << 2
	FlagDecimal   = 1 << 3
	FlagBreak     = 1 << 4
	FlagUnused    = 1 << 5
	FlagOverflow  = 1 << 6
	FlagNegative  = 1 << 7
)

const (
	vectorNMI   = 0xFFFA
	vectorReset = 0xFFFC
	vectorIRQ   = 0xFFFE
)

// CPU holds the 6502 register file and timing counters. It has no
// memory of its own; every read/write goes through the Bus passed to
// Cycle.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	cycles     uint64
	skipCycles int

	nmiPending bool
	irqLine    bool // level-sensitive: true while the mapper/APU assert it
}

// New creates a CPU in its post-reset state. Callers still need to
// call Reset once a bus is available so PC is loaded from the reset
// vector.
func New() *CPU {
	return &CPU{SP: 0xFD, P: FlagUnused | FlagInterrupt}
}

// Reset performs the power-on/reset sequence: registers cleared, P set
// to the documented 0x24, PC loaded from the reset vector, and the
// cycle counters zeroed.
func (c *CPU) Reset(bus Bus) {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = FlagUnused | FlagInterrupt
	c.PC = c.readAddress(bus, vectorReset)
	c.cycles = 0
	c.skipCycles = 0
	c.nmiPending = false
	c.irqLine = false
}

// SetPC forces the program counter, for tests that need to start
// execution at a specific address instead of following the reset
// vector (e.g. nestest's automated-mode entry point).
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Cycles reports the number of Cycle calls serviced since Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// TriggerNMI latches a non-maskable interrupt, serviced at the next
// fetch boundary regardless of the interrupt-disable flag.
func (c *CPU) TriggerNMI() { c.nmiPending = true }

// SetIRQLine sets the level-sensitive IRQ line's asserted state. The
// mapper or APU holds it up for as long as their condition holds;
// dropping it (asserted=false) is how an IRQ acknowledge is modeled.
func (c *CPU) SetIRQLine(asserted bool) { c.irqLine = asserted }

// Cycle advances the CPU by exactly one clock cycle. Most calls just
// decrement a pending instruction's remaining cycles; only one call in
// N (N being the instruction's cycle count) actually fetches and
// dispatches.
func (c *CPU) Cycle(bus Bus) {
	c.cycles++
	if c.skipCycles > 1 {
		c.skipCycles--
		return
	}
	c.skipCycles = 0

	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(bus, vectorNMI, false)
		c.skipCycles = 7
		return
	}
	if c.irqLine && c.P&FlagInterrupt == 0 {
		c.serviceInterrupt(bus, vectorIRQ, false)
		c.skipCycles = 7
		return
	}

	op := bus.Read(c.PC)
	c.PC++

	if c.dispatchImplied(bus, op) || c.dispatchBranch(bus, op) ||
		c.dispatchType1(bus, op) || c.dispatchType2(bus, op) || c.dispatchType0(bus, op) {
		c.skipCycles += int(baseCycles[op])
	} else {
		logger.LogCPU("unknown opcode $%02X at $%04X, no-op", op, c.PC-1)
		c.skipCycles += 2
	}

	if extra := bus.TakeDMAStall(); extra > 0 {
		if c.cycles%2 == 1 {
			extra++
		}
		c.skipCycles += extra
	}
}

// serviceInterrupt pushes PC/P and loads the vector common to
// BRK/IRQ/NMI entry. isBRK controls the signature-byte skip and the
// "B" bit pushed alongside P; it does not touch skipCycles, since the
// two callers (the BRK opcode and the standalone NMI/IRQ path) account
// for cycles differently — BRK through the opcode's base-cycle table
// entry, NMI/IRQ by setting skipCycles directly since no opcode byte
// was fetched.
func (c *CPU) serviceInterrupt(bus Bus, vector uint16, isBRK bool) {
	if isBRK {
		c.PC++
	}
	c.push16(bus, c.PC)
	pushed := c.P | FlagUnused
	if isBRK {
		pushed |= FlagBreak
	}
	c.push(bus, pushed)
	c.P |= FlagInterrupt
	c.PC = c.readAddress(bus, vector)
}

func (c *CPU) getFlag(flag uint8) bool { return c.P&flag != 0 }

func (c *CPU) setFlag(flag uint8, value bool) {
	if value {
		c.P |= flag
	} else {
		c.P &^= flag
	}
}

func (c *CPU) setZN(v uint8) {
	c.setFlag(FlagZero, v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
}

func (c *CPU) push(bus Bus, value uint8) {
	bus.Write(0x100|uint16(c.SP), value)
	c.SP--
}

func (c *CPU) pop(bus Bus) uint8 {
	c.SP++
	return bus.Read(0x100 | uint16(c.SP))
}

func (c *CPU) push16(bus Bus, value uint16) {
	c.push(bus, uint8(value>>8))
	c.push(bus, uint8(value))
}

func (c *CPU) pop16(bus Bus) uint16 {
	lo := uint16(c.pop(bus))
	hi := uint16(c.pop(bus))
	return hi<<8 | lo
}

// readAddress reads a little-endian 16-bit value at addr without
// wrapping within a page (used for absolute operands and vectors; the
// JMP-indirect page-wrap bug is handled separately where it applies).
func (c *CPU) readAddress(bus Bus, addr uint16) uint16 {
	lo := uint16(bus.Read(addr))
	hi := uint16(bus.Read(addr + 1))
	return hi<<8 | lo
}
