package viewer

import (
	"fmt"
	"strings"
)

// AppName is the window title prefix.
const AppName = "Spatial Viewer"

// hud tracks what the window title shows: frame rate, surface count and
// the surface under the cursor.
type hud struct {
	surfaces int
	frames   int
	elapsed  float32
	fps      float32
	target   string
	paused   bool
}

// frame accounts one frame of dt seconds. The rate is refreshed once per
// second.
func (h *hud) frame(dt float32) {
	h.frames++
	h.elapsed += dt
	if h.elapsed >= 1 {
		h.fps = float32(h.frames) / h.elapsed
		h.frames = 0
		h.elapsed = 0
	}
}

func (h *hud) title() string {
	var b strings.Builder
	b.WriteString(AppName)
	fmt.Fprintf(&b, " | %.0f FPS | %d surfaces", h.fps, h.surfaces)
	if h.target != "" {
		fmt.Fprintf(&b, " | %s", h.target)
	}
	if h.paused {
		b.WriteString(" | click to capture mouse")
	}
	return b.String()
}
