package cpu

// baseCycles is the standard NMOS 6502 per-opcode cycle count. Extra
// cycles for taken branches, page crossings, and OAM DMA stalls are
// layered on top by Cycle and the dispatch functions; entries for
// opcodes no dispatch function claims are never read but are filled
// in with the unknown-opcode cost for completeness.
var baseCycles = [256]uint8{
	//        0  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F
	/*0x00*/ 7, 6, 2, 2, 2, 3, 5, 2, 3, 2, 2, 2, 2, 4, 6, 2,
	/*0x10*/ 2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
	/*0x20*/ 6, 6, 2, 2, 3, 3, 5, 2, 4, 2, 2, 2, 4, 4, 6, 2,
	/*0x30*/ 2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
	/*0x40*/ 6, 6, 2, 2, 2, 3, 5, 2, 3, 2, 2, 2, 3, 4, 6, 2,
	/*0x50*/ 2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
	/*0x60*/ 6, 6, 2, 2, 2, 3, 5, 2, 4, 2, 2, 2, 5, 4, 6, 2,
	/*0x70*/ 2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
	/*0x80*/ 2, 6, 2, 2, 3, 3, 3, 2, 2, 2, 2, 2, 4, 4, 4, 2,
	/*0x90*/ 2, 6, 2, 2, 4, 4, 4, 2, 2, 5, 2, 2, 2, 5, 2, 2,
	/*0xA0*/ 2, 6, 2, 2, 3, 3, 3, 2, 2, 2, 2, 2, 4, 4, 4, 2,
	/*0xB0*/ 2, 5, 2, 2, 4, 4, 4, 2, 2, 4, 2, 2, 4, 4, 4, 2,
	/*0xC0*/ 2, 6, 2, 2, 3, 3, 5, 2, 2, 2, 2, 2, 4, 4, 6, 2,
	/*0xD0*/ 2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
	/*0xE0*/ 2, 6, 2, 2, 3, 3, 5, 2, 2, 2, 2, 2, 4, 4, 6, 2,
	/*0xF0*/ 2, 5, 2, 2, 2, 4, 6, 2, 2, 4, 2, 2, 2, 4, 7, 2,
}
