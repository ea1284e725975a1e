package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "camera.yaml", "YAML config file; defaults are used if it is missing")
	scriptPath := flag.String("script", "", "run a gesture script headlessly and exit")
	snapshotPath := flag.String("snapshot", "", "with -script, write the rendered canvas to this PNG")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	if *scriptPath != "" {
		if err := RunScript(cfg, *scriptPath, *snapshotPath, os.Stdout); err != nil {
			log.Fatal().Err(err).Str("script", *scriptPath).Msg("replay failed")
		}
		return
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle(WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	ratio := pixelRatio(cfg)
	log.Info().
		Float64("ratio", ratio).
		Float64("width", cfg.CanvasWidth).
		Float64("height", cfg.CanvasHeight).
		Msg("starting")

	if err := ebiten.RunGame(NewGame(cfg, ratio)); err != nil {
		log.Fatal().Err(err).Msg("run game")
	}
}

// pixelRatio uses the configured ratio, then the monitor's, then 1.
func pixelRatio(cfg Config) float64 {
	if cfg.PixelRatio > 0 {
		return cfg.PixelRatio
	}
	if m := ebiten.Monitor(); m != nil {
		if r := m.DeviceScaleFactor(); r > 0 {
			return r
		}
	}
	return 1
}
