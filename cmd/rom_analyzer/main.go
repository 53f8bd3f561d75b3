// Command rom_analyzer prints the parsed iNES header and mapper
// configuration of a ROM file without running it.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hollowcart/nescore/pkg/cartridge"
	"github.com/hollowcart/nescore/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: rom_analyzer <rom_file>")
		os.Exit(1)
	}
	romFile := os.Args[1]

	if err := logger.Initialize(logger.LogLevelInfo, ""); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	file, err := os.Open(romFile)
	if err != nil {
		log.Fatalf("failed to open ROM file: %v", err)
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReader(file)
	if err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}

	logger.LogInfo("=== ROM Analysis ===")
	logger.LogInfo("File: %s", romFile)
	logger.LogInfo("Magic: %s", string(cart.Header.Magic[:]))
	logger.LogInfo("PRG ROM Size: %d units (%d KB)", cart.Header.PRGROMSize, int(cart.Header.PRGROMSize)*16)
	logger.LogInfo("CHR ROM Size: %d units (%d KB)", cart.Header.CHRROMSize, int(cart.Header.CHRROMSize)*8)
	logger.LogInfo("Flags6: 0x%02X  Flags7: 0x%02X", cart.Header.Flags6, cart.Header.Flags7)

	mapperNumber := cart.Header.MapperNumber()
	logger.LogInfo("Mapper Number: %d", mapperNumber)
	logger.LogInfo("Mirroring: %s", cart.CurrentMirroring())
	logger.LogInfo("Battery Backed: %v", cart.HasExtendedRAM)
	logger.LogInfo("Four Screen VRAM: %v", cart.Header.Flags6&0x08 != 0)

	logger.LogInfo("PRG ROM: %d bytes", len(cart.PRGROM))
	if len(cart.CHRROM) > 0 {
		logger.LogInfo("CHR ROM: %d bytes", len(cart.CHRROM))
	}
	if len(cart.CHRRAM) > 0 {
		logger.LogInfo("CHR RAM: %d bytes", len(cart.CHRRAM))
	}
	if len(cart.PRGRAM) > 0 {
		logger.LogInfo("PRG RAM: %d bytes", len(cart.PRGRAM))
	}

	logger.LogInfo("=== Raw Header Dump ===")
	headerBytes := []uint8{
		cart.Header.Magic[0], cart.Header.Magic[1], cart.Header.Magic[2], cart.Header.Magic[3],
		cart.Header.PRGROMSize, cart.Header.CHRROMSize, cart.Header.Flags6, cart.Header.Flags7,
		cart.Header.Flags8, cart.Header.Flags9, cart.Header.Flags10,
		cart.Header.Padding[0], cart.Header.Padding[1], cart.Header.Padding[2], cart.Header.Padding[3], cart.Header.Padding[4],
	}
	line := ""
	for i, b := range headerBytes {
		line += fmt.Sprintf("%02X ", b)
		if (i+1)%16 == 0 {
			logger.LogInfo("%s", line)
			line = ""
		}
	}
	if line != "" {
		logger.LogInfo("%s", line)
	}
}
