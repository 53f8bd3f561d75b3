// Package cartridge parses iNES ROM images and owns the resulting
// PRG/CHR data, mirroring mode and Mapper instance.
package cartridge

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hollowcart/nescore/pkg/cartridge/mapper"
)

// Load errors, surfaced to the caller of Load/LoadFromReader.
var (
	ErrBadMagic  = errors.New("cartridge: bad iNES magic number")
	ErrTruncated = errors.New("cartridge: truncated ROM image")
)

// UnsupportedMapperError reports an iNES mapper id this core cannot run.
type UnsupportedMapperError struct {
	ID uint8
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("cartridge: unsupported mapper %d", e.ID)
}

// Cartridge owns the PRG/CHR data and mirroring parsed from an iNES
// image, plus the Mapper built to serve it.
type Cartridge struct {
	PRGROM []uint8
	CHRROM []uint8
	PRGRAM []uint8
	CHRRAM []uint8

	Header Header

	// Mirroring as declared by the iNES header. Mappers that support
	// dynamic mirroring (MMC1, MMC3) report their own current mode via
	// Mapper.Mirroring(); this field is the load-time default they
	// start from and the permanent mode for mappers that never change it.
	Mirroring mapper.Mirroring

	// HasExtendedRAM records whether the cartridge declares
	// battery-backed PRG-RAM (iNES header flag 6, bit 1).
	HasExtendedRAM bool

	Mapper mapper.Mapper
}

// Header is the parsed 16-byte iNES header.
type Header struct {
	Magic      [4]uint8
	PRGROMSize uint8 // 16 KiB units
	CHRROMSize uint8 // 8 KiB units
	Flags6     uint8
	Flags7     uint8
	Flags8     uint8
	Flags9     uint8
	Flags10    uint8
	Padding    [5]uint8
}

// MapperNumber reassembles the 8-bit mapper id split across the header's
// Flags6/Flags7 nibbles.
func (h Header) MapperNumber() uint8 {
	return (h.Flags6 >> 4) | (h.Flags7 & 0xF0)
}

// Load parses an iNES image held entirely in memory.
func Load(rom []byte) (*Cartridge, error) {
	return LoadFromReader(bytes.NewReader(rom))
}

// LoadFromReader parses an iNES image from a stream.
func LoadFromReader(reader io.Reader) (*Cartridge, error) {
	cart := &Cartridge{}

	if err := cart.readHeader(reader); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading header: %w", ErrTruncated)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if string(cart.Header.Magic[:]) != "NES\x1A" {
		return nil, ErrBadMagic
	}

	if cart.Header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(reader, trainer); err != nil {
			return nil, fmt.Errorf("reading trainer: %w", ErrTruncated)
		}
	}

	prgSize := int(cart.Header.PRGROMSize) * 16384
	cart.PRGROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(reader, cart.PRGROM); err != nil {
		return nil, fmt.Errorf("reading PRG ROM: %w", ErrTruncated)
	}

	chrSize := int(cart.Header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.CHRROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(reader, cart.CHRROM); err != nil {
			return nil, fmt.Errorf("reading CHR ROM: %w", ErrTruncated)
		}
	} else {
		chrRAMSize := 8192
		if cart.Header.MapperNumber() == 4 {
			chrRAMSize = 32768
		}
		cart.CHRRAM = make([]uint8, chrRAMSize)
	}

	cart.HasExtendedRAM = cart.Header.Flags6&0x02 != 0
	if cart.HasExtendedRAM {
		cart.PRGRAM = make([]uint8, 32768)
	}

	switch {
	case cart.Header.Flags6&0x08 != 0:
		cart.Mirroring = mapper.MirroringFourScreen
	case cart.Header.Flags6&0x01 != 0:
		cart.Mirroring = mapper.MirroringVertical
	default:
		cart.Mirroring = mapper.MirroringHorizontal
	}

	mapperNumber := cart.Header.MapperNumber()
	data := &mapper.CartridgeData{
		PRGROM:          cart.PRGROM,
		CHRROM:          cart.CHRROM,
		PRGRAM:          cart.PRGRAM,
		CHRRAM:          cart.CHRRAM,
		HeaderMirroring: cart.Mirroring,
	}

	m, err := mapper.New(mapperNumber, data)
	if err != nil {
		var unsupported *mapper.UnsupportedMapperError
		if errors.As(err, &unsupported) {
			return nil, &UnsupportedMapperError{ID: unsupported.ID}
		}
		return nil, err
	}
	cart.Mapper = m

	return cart, nil
}

func (c *Cartridge) readHeader(reader io.Reader) error {
	raw := make([]uint8, 16)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return err
	}
	copy(c.Header.Magic[:], raw[0:4])
	c.Header.PRGROMSize = raw[4]
	c.Header.CHRROMSize = raw[5]
	c.Header.Flags6 = raw[6]
	c.Header.Flags7 = raw[7]
	c.Header.Flags8 = raw[8]
	c.Header.Flags9 = raw[9]
	c.Header.Flags10 = raw[10]
	copy(c.Header.Padding[:], raw[11:16])
	return nil
}

// ReadPRG reads from CPU-visible cartridge space ($4020-$FFFF in
// practice, though the mapper clamps and masks addresses outside its
// declared windows to 0 rather than trusting the caller's range).
func (c *Cartridge) ReadPRG(addr uint16) uint8 { return c.Mapper.ReadPRG(addr) }

// WritePRG writes to CPU-visible cartridge space.
func (c *Cartridge) WritePRG(addr uint16, value uint8) { c.Mapper.WritePRG(addr, value) }

// ReadCHR reads from PPU-visible cartridge space ($0000-$1FFF).
func (c *Cartridge) ReadCHR(addr uint16) uint8 { return c.Mapper.ReadCHR(addr) }

// WriteCHR writes to PPU-visible cartridge space.
func (c *Cartridge) WriteCHR(addr uint16, value uint8) { c.Mapper.WriteCHR(addr, value) }

// CurrentMirroring returns the cartridge's present name-table mirroring,
// deferring to the mapper since MMC1/MMC3 can change it after load.
func (c *Cartridge) CurrentMirroring() mapper.Mirroring { return c.Mapper.Mirroring() }
