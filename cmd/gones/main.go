// Command gones is the SDL2 front end for the nescore emulation core.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hollowcart/nescore/pkg/gui"
	"github.com/hollowcart/nescore/pkg/logger"
	"github.com/hollowcart/nescore/pkg/nes"
	"github.com/hollowcart/nescore/pkg/nesconfig"
)

func main() {
	cfg, err := nesconfig.Parse(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.ROMPath == "" {
		fmt.Printf("Usage: %s [options] <rom_file>\n\n", os.Args[0])
		fmt.Println("Controls:")
		fmt.Println("  Z - A button")
		fmt.Println("  X - B button")
		fmt.Println("  A - Select")
		fmt.Println("  S - Start")
		fmt.Println("  Arrow keys - D-pad")
		fmt.Println("  ESC - Quit")
		os.Exit(1)
	}

	if err := cfg.InitLogger(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.LogInfo("nescore starting...")

	rom, err := os.ReadFile(cfg.ROMPath)
	if err != nil {
		log.Fatalf("failed to read ROM file: %v", err)
	}

	emu := nes.New()
	if err := emu.Load(rom); err != nil {
		logger.LogError("failed to load ROM: %v", err)
		log.Fatalf("failed to load ROM: %v", err)
	}
	emu.Reset()
	logger.LogInfo("loaded ROM: %s", filepath.Base(cfg.ROMPath))

	if cfg.Headless {
		runHeadless(emu, cfg.TestFrames)
		return
	}

	nesGUI, err := gui.NewNESGUI(emu)
	if err != nil {
		logger.LogError("failed to create GUI: %v", err)
		log.Fatalf("failed to create GUI: %v", err)
	}
	defer nesGUI.Destroy()

	logger.LogInfo("starting emulator...")
	nesGUI.Run()
	logger.LogInfo("emulator stopped")
}

func runHeadless(emu *nes.Emulator, frames int) {
	logger.LogInfo("running headless for %d frames", frames)
	start := time.Now()

	for frame := 0; frame < frames; frame++ {
		for i := 0; i < gui.CyclesPerFrame; i++ {
			emu.Cycle()
		}
	}

	logger.LogInfo("headless run completed in %v (%d CPU cycles)", time.Since(start), emu.Cycles)
}
