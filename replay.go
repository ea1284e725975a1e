package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"canvas-camera/canvas"
	"canvas-camera/script"
)

// RunScript replays the gesture script at path against a headless surface,
// prints the final camera state to w and, if snapshot is set, writes the
// rendered canvas there as a PNG.
func RunScript(cfg Config, path, snapshot string, w io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	ratio := cfg.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	cam := canvas.NewCamera(cfg.CanvasWidth, cfg.CanvasHeight,
		canvas.WithPixelRatio(ratio),
		canvas.WithZoomSensitivity(cfg.ZoomSensitivity),
		canvas.WithLogger(log.With().Str("component", "camera").Logger()),
	)
	surface := canvas.NewContextSurface(1, 1)
	surface.SetLogger(log.With().Str("component", "surface").Logger())
	cam.Reset(surface)

	runner := script.NewRunner(cam, surface, log.With().Str("component", "script").Logger())
	res, err := runner.Run(path, string(src), nil)
	if err != nil {
		return fmt.Errorf("run script: %w", err)
	}

	st := res.State
	fmt.Fprintf(w, "scale: %g\n", st.Scale)
	fmt.Fprintf(w, "offset: %g %g\n", st.Offset.X, st.Offset.Y)
	fmt.Fprintf(w, "viewport_top_left: %g %g\n", st.ViewportTopLeft.X, st.ViewportTopLeft.Y)
	fmt.Fprintf(w, "pointer: %g %g\n", st.PointerPos.X, st.PointerPos.Y)

	if snapshot == "" {
		return nil
	}
	if err := drawScene(cam, surface, cfg.GridSize); err != nil {
		return err
	}
	if err := surface.SavePNG(snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Info().Str("path", snapshot).Msg("snapshot saved")
	return nil
}
