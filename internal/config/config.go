// Package config handles meshtool configuration loading and management.
package config

// Config holds all meshtool settings.
type Config struct {
	Asset   AssetConfig   `yaml:"asset"`
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
}

// AssetConfig holds model file locations.
type AssetConfig struct {
	Path        string   `yaml:"path"`         // Model loaded when no file argument is given
	SearchPaths []string `yaml:"search_paths"` // Directories searched for relative model paths
}

// WindowConfig holds the GL window settings used by the upload command.
type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	Hidden bool `yaml:"hidden"`
}

// CameraConfig holds the initial fly camera state.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position,flow"`
	Yaw         float32    `yaml:"yaw"`   // degrees
	Pitch       float32    `yaml:"pitch"` // degrees
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	FOV         float32    `yaml:"fov"` // vertical, degrees
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Asset: AssetConfig{
			Path: "",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Hidden: true,
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 1.6, 5},
			Yaw:         -90,
			Pitch:       0,
			Speed:       6,
			Sensitivity: 0.1,
			FOV:         45,
			Near:        0.1,
			Far:         100,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
