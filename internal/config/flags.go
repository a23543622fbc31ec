package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging and skeleton geometry")
	flagAsset  = flag.String("asset", "", "Path to .gltf or .glb file")
	flagListen = flag.String("listen", "", "Pose update listener address (host:port)")
	flagFPS    = flag.Int("fps", 0, "Simulation ticks per second")
	flagNoRPC  = flag.Bool("no-rpc", false, "Disable the pose update listener")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.Enabled = true
	}
	if *flagAsset != "" {
		cfg.Asset.Path = *flagAsset
	}
	if *flagListen != "" {
		host, port, err := splitHostPort(*flagListen)
		if err != nil {
			return err
		}
		cfg.RPC.Address = host
		cfg.RPC.Port = port
	}
	if *flagFPS > 0 {
		cfg.Animation.FPS = *flagFPS
	}
	if *flagNoRPC {
		cfg.RPC.Enabled = false
	}
	return nil
}
