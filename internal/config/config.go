// Package config handles configuration loading and management.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all settings.
type Config struct {
	Animation AnimationConfig `yaml:"animation"`
	RPC       RPCConfig       `yaml:"rpc"`
	Debug     DebugConfig     `yaml:"debug"`
	Asset     AssetConfig     `yaml:"asset"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	FPS            int    `yaml:"fps"`
	Autoplay       bool   `yaml:"autoplay"`
	StartAnimation string `yaml:"start_animation"` // Name; empty plays the first
}

// RPCConfig holds pose update listener settings.
type RPCConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Address         string        `yaml:"address"`
	Port            int           `yaml:"port"`
	QueueSize       int           `yaml:"queue_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AccessLog       bool          `yaml:"access_log"`
}

// Addr returns the listen address as host:port.
func (c RPCConfig) Addr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// DebugConfig holds skeleton debug drawing settings.
type DebugConfig struct {
	Enabled            bool    `yaml:"enabled"`
	JointPoints        bool    `yaml:"joint_points"`
	BoneSegments       bool    `yaml:"bone_segments"`
	ChildlessExtension bool    `yaml:"childless_extension"`
	BoneAxes           bool    `yaml:"bone_axes"`
	MeshAnchors        bool    `yaml:"mesh_anchors"`
	Bounds             bool    `yaml:"bounds"`
	ExtensionLength    float32 `yaml:"extension_length"`
	AxisLength         float32 `yaml:"axis_length"`
}

// AssetConfig holds asset file paths.
type AssetConfig struct {
	Path string `yaml:"path"` // .gltf or .glb file
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			FPS:      60,
			Autoplay: true,
		},
		RPC: RPCConfig{
			Enabled:         true,
			Address:         "127.0.0.1",
			Port:            21264,
			QueueSize:       256,
			ShutdownTimeout: 5 * time.Second,
		},
		Debug: DebugConfig{
			Enabled:            false,
			JointPoints:        true,
			BoneSegments:       true,
			ChildlessExtension: true,
			BoneAxes:           false,
			MeshAnchors:        false,
			ExtensionLength:    0.25,
			AxisLength:         0.125,
		},
		Asset: AssetConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
