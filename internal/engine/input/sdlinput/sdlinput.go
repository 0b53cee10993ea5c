// Package sdlinput reads viewer input from SDL2.
package sdlinput

import (
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/spatial-viewer/internal/engine/input"
	"github.com/Faultbox/spatial-viewer/internal/logger"
)

var scancodes = [input.KeyCount]sdl.Scancode{
	input.KeyW:      sdl.SCANCODE_W,
	input.KeyA:      sdl.SCANCODE_A,
	input.KeyS:      sdl.SCANCODE_S,
	input.KeyD:      sdl.SCANCODE_D,
	input.KeyEscape: sdl.SCANCODE_ESCAPE,
	input.KeyF1:     sdl.SCANCODE_F1,
	input.KeyF2:     sdl.SCANCODE_F2,
	input.KeyF12:    sdl.SCANCODE_F12,
}

// Source reads input from SDL2. The mouse is captured in relative mode while
// the 3D view has focus; Escape releases it and a click captures it again.
type Source struct {
	dx, dy   float32
	keys     []uint8
	captured bool
}

var _ input.Source = (*Source)(nil)

// New creates an SDL input source and captures the mouse.
func New() *Source {
	in := &Source{}
	in.setCapture(true)
	return in
}

// Poll drains the SDL event queue. Call it once per frame before the
// camera reads the source.
func (in *Source) Poll() input.Events {
	var ev input.Events
	in.dx, in.dy = 0, 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			ev.Quit = true

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
				ev.Resized = true
				ev.Width = int(e.Data1)
				ev.Height = int(e.Data2)
			case sdl.WINDOWEVENT_FOCUS_LOST:
				in.setCapture(false)
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			if k, ok := keyFor(e.Keysym.Scancode); ok {
				ev.Pressed = append(ev.Pressed, k)
				if k == input.KeyEscape {
					in.setCapture(false)
				}
			}

		case *sdl.MouseMotionEvent:
			if in.captured {
				in.dx += float32(e.XRel)
				in.dy += float32(e.YRel)
			}

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN && !in.captured {
				in.setCapture(true)
			}
		}
	}

	in.keys = sdl.GetKeyboardState()
	return ev
}

func keyFor(sc sdl.Scancode) (input.Key, bool) {
	for k, code := range scancodes {
		if code == sc {
			return input.Key(k), true
		}
	}
	return 0, false
}

func (in *Source) setCapture(on bool) {
	if in.captured == on {
		return
	}
	in.captured = on
	if rc := sdl.SetRelativeMouseMode(on); rc != 0 {
		logger.Warn("failed to change relative mouse mode", zap.Bool("capture", on), zap.Error(sdl.GetError()))
	}
	logger.Debug("mouse capture changed", zap.Bool("captured", on))
}

// MouseMove implements input.Source.
func (in *Source) MouseMove() (dx, dy float32) {
	return in.dx, in.dy
}

// KeyDown implements input.Source.
func (in *Source) KeyDown(k input.Key) bool {
	if !k.Valid() {
		return false
	}
	sc := int(scancodes[k])
	return sc < len(in.keys) && in.keys[sc] != 0
}

// FocusCaptured implements input.Source. It is true while the mouse is released.
func (in *Source) FocusCaptured() bool {
	return !in.captured
}
