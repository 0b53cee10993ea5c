// Package input defines the per-frame state the viewer's camera and toggles
// consume. The SDL2 reader lives in input/sdlinput so that code driven by a
// Script needs no windowing system.
package input

// Key identifies a key the viewer reacts to.
type Key int

// Keys used by the viewer.
const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyEscape
	KeyF1
	KeyF2
	KeyF12

	// KeyCount is the number of keys above.
	KeyCount
)

var keyNames = [KeyCount]string{"W", "A", "S", "D", "Escape", "F1", "F2", "F12"}

// String returns the key name.
func (k Key) String() string {
	if !k.Valid() {
		return "Unknown"
	}
	return keyNames[k]
}

// Valid reports whether k is one of the keys above.
func (k Key) Valid() bool {
	return k >= 0 && k < KeyCount
}

// Events reports the window events seen during one poll.
type Events struct {
	Quit    bool
	Resized bool
	Width   int
	Height  int
	Pressed []Key // keys that went down this frame
}

// WasPressed reports whether k went down this frame.
func (e Events) WasPressed(k Key) bool {
	for _, p := range e.Pressed {
		if p == k {
			return true
		}
	}
	return false
}

// Source is the per-frame input a camera reads.
type Source interface {
	// MouseMove returns the mouse motion accumulated this frame, in pixels.
	MouseMove() (dx, dy float32)
	// KeyDown reports whether k is held.
	KeyDown(k Key) bool
	// FocusCaptured reports whether something other than the 3D view
	// has input focus, in which case camera control is suspended.
	FocusCaptured() bool
}

// Frame is one frame of input state.
type Frame struct {
	DX, DY  float32
	Keys    []Key
	Focused bool // true when focus is captured elsewhere
}

// Script replays a fixed sequence of frames. It is meant for tests.
type Script struct {
	frames []Frame
	cur    int
}

// NewScript creates a script positioned at its first frame.
func NewScript(frames ...Frame) *Script {
	return &Script{frames: frames}
}

// Repeat returns n copies of f.
func Repeat(f Frame, n int) []Frame {
	out := make([]Frame, n)
	for i := range out {
		out[i] = f
	}
	return out
}

// Next advances to the following frame. It returns false once the script
// is exhausted.
func (s *Script) Next() bool {
	if s.cur >= len(s.frames) {
		return false
	}
	s.cur++
	return s.cur < len(s.frames)
}

// Done reports whether every frame has been consumed.
func (s *Script) Done() bool {
	return s.cur >= len(s.frames)
}

func (s *Script) frame() Frame {
	if s.cur >= len(s.frames) {
		return Frame{}
	}
	return s.frames[s.cur]
}

// MouseMove implements Source.
func (s *Script) MouseMove() (dx, dy float32) {
	f := s.frame()
	return f.DX, f.DY
}

// KeyDown implements Source.
func (s *Script) KeyDown(k Key) bool {
	for _, held := range s.frame().Keys {
		if held == k {
			return true
		}
	}
	return false
}

// FocusCaptured implements Source.
func (s *Script) FocusCaptured() bool {
	return s.frame().Focused
}
