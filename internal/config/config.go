package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// Default launcher configuration, used when config.json is missing or
// individual keys are absent.
const (
	DefaultPatchesURL     = "http://uo-elantharil.de:8080/patcher/patches.json"
	DefaultDataDir        = "./data"
	DefaultUnpackDir      = "./unpack"
	DefaultVersionMapFile = "./versions.json"
	DefaultClientExe      = "client.exe"
)

// ConfigFileName is the launcher configuration file expected next to the executable
const ConfigFileName = "config.json"

// Config holds the launcher configuration read from config.json
type Config struct {
	PatchesURL     string `mapstructure:"patches_url"`
	DataDir        string `mapstructure:"data_dir"`
	UnpackDir      string `mapstructure:"unpack_dir"`
	VersionMapFile string `mapstructure:"version_map_file"`
	ClientExe      string `mapstructure:"client_exe"`
}

// Load reads the launcher configuration from the given path. A missing or
// malformed file is not fatal: the launcher must still start with defaults,
// so problems are logged and the default configuration is returned.
func Load(path string) *Config {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("patches_url", DefaultPatchesURL)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("unpack_dir", DefaultUnpackDir)
	v.SetDefault("version_map_file", DefaultVersionMapFile)
	v.SetDefault("client_exe", DefaultClientExe)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file %s not found, using defaults", path)
		} else {
			log.Printf("Config file %s could not be read (%v), using defaults", path, err)
			// Drop the broken file from the viper state so defaults apply cleanly
			v = viper.New()
			v.SetDefault("patches_url", DefaultPatchesURL)
			v.SetDefault("data_dir", DefaultDataDir)
			v.SetDefault("unpack_dir", DefaultUnpackDir)
			v.SetDefault("version_map_file", DefaultVersionMapFile)
			v.SetDefault("client_exe", DefaultClientExe)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		log.Printf("Config file %s could not be decoded (%v), using defaults", path, err)
		return defaultConfig()
	}

	// Empty values behave like missing keys
	if cfg.PatchesURL == "" {
		cfg.PatchesURL = DefaultPatchesURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.UnpackDir == "" {
		cfg.UnpackDir = DefaultUnpackDir
	}
	if cfg.VersionMapFile == "" {
		cfg.VersionMapFile = DefaultVersionMapFile
	}
	if cfg.ClientExe == "" {
		cfg.ClientExe = DefaultClientExe
	}

	return cfg
}

func defaultConfig() *Config {
	return &Config{
		PatchesURL:     DefaultPatchesURL,
		DataDir:        DefaultDataDir,
		UnpackDir:      DefaultUnpackDir,
		VersionMapFile: DefaultVersionMapFile,
		ClientExe:      DefaultClientExe,
	}
}
