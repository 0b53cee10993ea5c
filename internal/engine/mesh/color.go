package mesh

import (
	gomath "math"

	"github.com/Faultbox/spatial-viewer/pkg/math"
)

// Color is an RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

// PackColor packs c into 32 bits, 8 bits per channel, red in the lowest
// byte and alpha in the highest. Each channel is rounded and clamped.
func PackColor(c Color) uint32 {
	return uint32(channelByte(c.R)) |
		uint32(channelByte(c.G))<<8 |
		uint32(channelByte(c.B))<<16 |
		uint32(channelByte(c.A))<<24
}

// PackBytes packs byte channels in the same order as PackColor.
func PackBytes(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

// UnpackColor splits a packed color into r, g, b, a bytes.
func UnpackColor(packed uint32) [4]uint8 {
	return [4]uint8{
		uint8(packed),
		uint8(packed >> 8),
		uint8(packed >> 16),
		uint8(packed >> 24),
	}
}

func channelByte(v float32) uint8 {
	f := gomath.Round(float64(v) * 255)
	if f < 0 || gomath.IsNaN(f) {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

// SlopeColor picks the color for a vertex normal: HighlightColor when the
// angle to world up exceeds the threshold, DefaultColor otherwise.
func SlopeColor(normal math.Vec3, opts Options) Color {
	if normal.Angle(math.Vec3Up) > opts.SlopeThreshold {
		return opts.HighlightColor
	}
	return opts.DefaultColor
}
