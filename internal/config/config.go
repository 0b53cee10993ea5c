// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Data     DataConfig     `yaml:"data"`
	Mesh     MeshConfig     `yaml:"mesh"`
	Scene    SceneConfig    `yaml:"scene"`
	Camera   CameraConfig   `yaml:"camera"`
	Cursor   CursorConfig   `yaml:"cursor"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	FOV        float32    `yaml:"fov"` // vertical, degrees
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Background [4]float32 `yaml:"background"`
	ShowBounds bool       `yaml:"show_bounds"`
}

// DataConfig says where surface files are found.
type DataConfig struct {
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"` // glob patterns relative to Dir
	Workers  int      `yaml:"workers"`  // parallel parsers, 0 means GOMAXPROCS
}

// MeshConfig controls how surface geometry becomes meshes.
type MeshConfig struct {
	Layout         string     `yaml:"layout"` // position_normal or position_normal_color
	Bounds         string     `yaml:"bounds"` // fixed or computed
	HalfExtent     float32    `yaml:"half_extent"`
	SlopeThreshold float32    `yaml:"slope_threshold"` // radians
	DefaultColor   [4]float32 `yaml:"default_color"`
	HighlightColor [4]float32 `yaml:"highlight_color"`
}

// SceneConfig holds scene placement and lighting.
type SceneConfig struct {
	EnvironmentScale  float32    `yaml:"environment_scale"`
	Ambient           [3]float32 `yaml:"ambient"`
	LightBrightness   float32    `yaml:"light_brightness"`
	LightFollowCamera bool       `yaml:"light_follow_camera"`
	LightYaw          float32    `yaml:"light_yaw"`       // degrees, used when not following
	LightElevation    float32    `yaml:"light_elevation"` // degrees above the horizon
	SurfaceColor      [4]float32 `yaml:"surface_color"`
}

// CameraConfig holds free-camera control settings.
type CameraConfig struct {
	Sensitivity float32    `yaml:"sensitivity"`
	MoveSpeed   float32    `yaml:"move_speed"`
	Start       [3]float32 `yaml:"start"`
	Yaw         float32    `yaml:"yaw"`
	Pitch       float32    `yaml:"pitch"`
}

// CursorConfig holds gaze cursor settings.
type CursorConfig struct {
	Enabled          bool       `yaml:"enabled"`
	MaxDistance      float32    `yaml:"max_distance"`
	FallbackDistance float32    `yaml:"fallback_distance"`
	MarkerScale      float32    `yaml:"marker_scale"`
	Color            [4]float32 `yaml:"color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        45,
			Near:       0.1,
			Far:        1000,
			Background: [4]float32{0.1, 0.1, 0.15, 1},
		},
		Data: DataConfig{
			Dir:      "Data",
			Patterns: []string{"*.json", "UrhoSpatialMappingData.txt"},
		},
		Mesh: MeshConfig{
			Layout:         "position_normal",
			Bounds:         "fixed",
			HalfExtent:     1.0,
			SlopeThreshold: 0.3,
			DefaultColor:   [4]float32{0.6, 0.6, 0.6, 1},
			HighlightColor: [4]float32{0.2, 0.6, 1, 1},
		},
		Scene: SceneConfig{
			EnvironmentScale:  0.2,
			Ambient:           [3]float32{0.3, 0.3, 0.3},
			LightBrightness:   0.8,
			LightFollowCamera: true,
			LightYaw:          30,
			LightElevation:    45,
			SurfaceColor:      [4]float32{0.8, 0.8, 0.8, 1},
		},
		Camera: CameraConfig{
			Sensitivity: 0.1,
			MoveSpeed:   2.0,
		},
		Cursor: CursorConfig{
			Enabled:          true,
			MaxDistance:      100,
			FallbackDistance: 5,
			MarkerScale:      0.05,
			Color:            [4]float32{0, 1, 1, 1},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks numeric settings. Layout and bounds names are checked
// where they are parsed.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FOV <= 0 || c.Graphics.FOV >= 180:
		return fmt.Errorf("%w: fov %v", ErrInvalid, c.Graphics.FOV)
	case c.Graphics.Near <= 0 || c.Graphics.Far <= c.Graphics.Near:
		return fmt.Errorf("%w: clip range %v..%v", ErrInvalid, c.Graphics.Near, c.Graphics.Far)
	case len(c.Data.Patterns) == 0:
		return fmt.Errorf("%w: no data patterns", ErrInvalid)
	case c.Data.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Data.Workers)
	case c.Mesh.HalfExtent <= 0:
		return fmt.Errorf("%w: half extent %v", ErrInvalid, c.Mesh.HalfExtent)
	case c.Scene.EnvironmentScale <= 0:
		return fmt.Errorf("%w: environment scale %v", ErrInvalid, c.Scene.EnvironmentScale)
	case c.Cursor.MaxDistance <= 0:
		return fmt.Errorf("%w: cursor max distance %v", ErrInvalid, c.Cursor.MaxDistance)
	}
	return nil
}
