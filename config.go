package main

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"canvas-camera/canvas"
)

const (
	// --- Window ---
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600
	WindowTitle         = "Canvas Camera"

	// --- Camera & View ---
	DefaultCanvasWidth  = 400.0
	DefaultCanvasHeight = 400.0
	DefaultCanvasX      = 40
	DefaultCanvasY      = 60
	CanvasMargin        = 10
	MinCanvasSize       = 50.0
	ZoomSensitivity     = canvas.DefaultZoomSensitivity
	WheelDeltaPerTick   = 100.0 // browser-style deltaY for one wheel notch
	ZoomButtonDelta     = 100.0
	KeyZoomDelta        = 10.0 // per frame while +/- is held

	// --- Scene ---
	GridSize     = 50.0
	SquareSize   = 20.0
	MarkerRadius = 5.0

	// --- UI ---
	ButtonWidth   = 30.0
	ButtonHeight  = 30.0
	ButtonMargin  = 10.0
	ResetButtonW  = 60.0
	StatusX       = 10
	StatusY       = 10
	DefaultFont   = "fonts/Roboto-Regular.ttf"
	ScreenshotPNG = "screenshot.png"
)

var (
	// --- Colors ---
	ColorBackground  = color.RGBA{30, 30, 35, 255}
	ColorCanvas      = color.RGBA{245, 245, 240, 255}
	ColorCanvasFrame = color.RGBA{90, 90, 100, 255}
	ColorGrid        = color.RGBA{200, 200, 210, 255}
	ColorOriginCross = color.RGBA{255, 100, 100, 150}
	ColorSquare      = color.RGBA{20, 20, 20, 255}
	ColorMarker      = color.RGBA{255, 0, 0, 255}
)

// Config holds the tunables that can be overridden from a YAML file.
type Config struct {
	WindowWidth     int     `yaml:"window_width"`
	WindowHeight    int     `yaml:"window_height"`
	CanvasWidth     float64 `yaml:"canvas_width"`
	CanvasHeight    float64 `yaml:"canvas_height"`
	CanvasX         int     `yaml:"canvas_x"`
	CanvasY         int     `yaml:"canvas_y"`
	PixelRatio      float64 `yaml:"pixel_ratio"` // 0 asks the monitor
	ZoomSensitivity float64 `yaml:"zoom_sensitivity"`
	WheelDelta      float64 `yaml:"wheel_delta"`
	ButtonZoomDelta float64 `yaml:"button_zoom_delta"`
	KeyZoomDelta    float64 `yaml:"key_zoom_delta"`
	GridSize        float64 `yaml:"grid_size"`
	FontPath        string  `yaml:"font_path"`
	LogLevel        string  `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		WindowWidth:     DefaultWindowWidth,
		WindowHeight:    DefaultWindowHeight,
		CanvasWidth:     DefaultCanvasWidth,
		CanvasHeight:    DefaultCanvasHeight,
		CanvasX:         DefaultCanvasX,
		CanvasY:         DefaultCanvasY,
		ZoomSensitivity: ZoomSensitivity,
		WheelDelta:      WheelDeltaPerTick,
		ButtonZoomDelta: ZoomButtonDelta,
		KeyZoomDelta:    KeyZoomDelta,
		GridSize:        GridSize,
		FontPath:        DefaultFont,
		LogLevel:        "info",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.WindowWidth <= 0 || c.WindowHeight <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("canvas size must be positive, got %vx%v", c.CanvasWidth, c.CanvasHeight)
	case c.PixelRatio < 0:
		return fmt.Errorf("pixel_ratio must not be negative, got %v", c.PixelRatio)
	case c.ZoomSensitivity <= 0:
		return fmt.Errorf("zoom_sensitivity must be positive, got %v", c.ZoomSensitivity)
	case c.WheelDelta <= 0:
		return fmt.Errorf("wheel_delta must be positive, got %v", c.WheelDelta)
	case c.ButtonZoomDelta <= 0:
		return fmt.Errorf("button_zoom_delta must be positive, got %v", c.ButtonZoomDelta)
	case c.KeyZoomDelta <= 0:
		return fmt.Errorf("key_zoom_delta must be positive, got %v", c.KeyZoomDelta)
	case c.GridSize <= 0:
		return fmt.Errorf("grid_size must be positive, got %v", c.GridSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
