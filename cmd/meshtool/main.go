// meshtool loads GLB models, uploads them to the GPU and views them with a
// fly camera.
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/alwayssomewhattired/Vulkan/internal/config"
	"github.com/alwayssomewhattired/Vulkan/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()
	args := config.Args()

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	command := args[0]
	rest := args[1:]

	switch command {
	case "info":
		err = cmdInfo(cfg, rest)
	case "upload":
		err = cmdUpload(cfg, rest)
	case "view":
		err = cmdView(cfg, rest)
	case "render":
		err = cmdRender(cfg, rest)
	case "config":
		err = cmdConfig(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - GLB mesh loader and GPU upload utility

Usage:
  meshtool [flags] <command> [args]

Commands:
  info [file.glb]      Parse and normalize a model, print its layout
  upload [file.glb]    Upload a model through a hidden GL context
  view [file.glb]      Open a window and fly around the model
                       (WASD move, right mouse look, B bounds, R reload,
                        F12 screenshot)
  render [file.glb]    Render an offscreen thumbnail (-o out.webp -size 512 -ss 2)
  config [path]        Write the effective config as YAML

Flags:
  -config <path>       Config file (default: ./meshtool.yaml)
  -model <path>        Model used when no file argument is given
  -debug               Enable debug logging
  -visible             Show the window during upload
  -width, -height      Window size

Examples:
  meshtool info models/viking_room.glb
  meshtool -debug upload models/viking_room.glb
  meshtool view models/viking_room.glb
  meshtool render -o room.webp -bounds models/viking_room.glb
  meshtool config ./meshtool.yaml`)
}

var errNoModel = errors.New("no model given: pass a .glb path or set asset.path")

// modelPath picks the model from the command arguments or the config.
func modelPath(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Asset.Path != "" {
		return cfg.Asset.Path, nil
	}
	return "", errNoModel
}
