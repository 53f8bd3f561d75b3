// Package gui is the SDL2 front end: it drives an *nes.Emulator one
// CPU cycle at a time, presents its framebuffer, and turns keyboard
// events into controller input.
package gui

import (
	"fmt"
	"runtime"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/hollowcart/nescore/pkg/input"
	"github.com/hollowcart/nescore/pkg/logger"
	"github.com/hollowcart/nescore/pkg/nes"
)

const (
	WindowWidth  = 256 * 3
	WindowHeight = 240 * 3
	WindowTitle  = "nescore - NES execution core"

	// CyclesPerFrame approximates one NTSC frame at the CPU's ~1.789773
	// MHz clock (29780.5 cycles/frame, rounded down).
	CyclesPerFrame = 29780

	TargetFPS = 60.0988
)

var FrameTime = time.Duration(16639267) * time.Nanosecond

// NESGUI is the SDL2 window and event loop wrapped around an emulator
// instance.
type NESGUI struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	emu      *nes.Emulator
	running  bool

	fpsCounter int
	fpsTimer   time.Time
	currentFPS float64
	showFPS    bool
}

// NewNESGUI opens a window sized for the NES's 256x240 picture, scaled
// 3x, and wraps it around the given emulator.
func NewNESGUI(emu *nes.Emulator) (*NESGUI, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, err
	}

	window, err := sdl.CreateWindow(
		WindowTitle,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		WindowWidth,
		WindowHeight,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	renderer.SetDrawBlendMode(sdl.BLENDMODE_NONE)

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		256,
		240,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	texture.SetBlendMode(sdl.BLENDMODE_NONE)

	return &NESGUI{
		window:   window,
		renderer: renderer,
		texture:  texture,
		emu:      emu,
		running:  true,
		fpsTimer: time.Now(),
		showFPS:  true,
	}, nil
}

// Destroy tears down every SDL resource this GUI created.
func (g *NESGUI) Destroy() {
	if g.texture != nil {
		g.texture.Destroy()
	}
	if g.renderer != nil {
		g.renderer.Destroy()
	}
	if g.window != nil {
		g.window.Destroy()
	}
	sdl.Quit()
}

// Run pumps events, steps the emulator one frame's worth of cycles,
// and presents the result, pacing itself to the NES's native frame rate.
func (g *NESGUI) Run() {
	frameCount := 0
	startTime := time.Now()

	for g.running {
		g.handleEvents()
		g.stepFrame()
		g.render()

		frameCount++
		targetEnd := startTime.Add(time.Duration(frameCount) * FrameTime)
		if now := time.Now(); now.Before(targetEnd) {
			time.Sleep(targetEnd.Sub(now))
		}
		g.updateFPS()
	}
}

func (g *NESGUI) stepFrame() {
	for i := 0; i < CyclesPerFrame; i++ {
		g.emu.Cycle()
	}
}

func (g *NESGUI) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			g.running = false
		case *sdl.KeyboardEvent:
			g.handleKeyboard(e)
		}
	}
}

func (g *NESGUI) handleKeyboard(event *sdl.KeyboardEvent) {
	pressed := event.State == sdl.PRESSED
	set := g.emu.ControllerPress
	if !pressed {
		set = g.emu.ControllerRelease
	}

	switch event.Keysym.Sym {
	case sdl.K_z:
		set(0, input.ButtonA)
	case sdl.K_x:
		set(0, input.ButtonB)
	case sdl.K_a:
		set(0, input.ButtonSelect)
	case sdl.K_s:
		set(0, input.ButtonStart)
	case sdl.K_UP:
		set(0, input.ButtonUp)
	case sdl.K_DOWN:
		set(0, input.ButtonDown)
	case sdl.K_LEFT:
		set(0, input.ButtonLeft)
	case sdl.K_RIGHT:
		set(0, input.ButtonRight)
	case sdl.K_ESCAPE:
		if pressed {
			g.running = false
		}
	case sdl.K_F3:
		if pressed {
			g.showFPS = !g.showFPS
		}
	}
}

func (g *NESGUI) render() {
	fb := g.emu.Framebuffer()
	g.texture.Update(nil, unsafe.Pointer(&fb[0]), 256*4)

	g.renderer.SetDrawColor(0, 0, 0, 255)
	g.renderer.Clear()
	g.renderer.Copy(g.texture, nil, nil)

	if g.showFPS {
		g.window.SetTitle(fmt.Sprintf("%s - FPS: %.1f", WindowTitle, g.currentFPS))
	}
	g.renderer.Present()
}

func (g *NESGUI) updateFPS() {
	g.fpsCounter++
	elapsed := time.Since(g.fpsTimer)
	if elapsed >= 500*time.Millisecond {
		g.currentFPS = float64(g.fpsCounter) / elapsed.Seconds()
		if deviation := (g.currentFPS - TargetFPS) / TargetFPS * 100; deviation > 5 || deviation < -5 {
			logger.LogInfo("FPS: %.2f (target: %.2f, deviation: %.1f%%)", g.currentFPS, TargetFPS, deviation)
		}
		g.fpsCounter = 0
		g.fpsTimer = time.Now()
	}
}
