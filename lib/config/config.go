package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-i2p/logger"
	"github.com/spf13/viper"
)

var (
	// CfgFile is an explicit config file path set by the CLI; empty means
	// the default location under the plume base directory.
	CfgFile string

	log = logger.GetGoI2PLogger()
)

// PlumeBaseDir is the per-user directory holding config and key material.
const PlumeBaseDir = ".go-plume"

// PoolConfig holds the relay pool settings.
type PoolConfig struct {
	Relays            []string
	VerifyEvents      bool
	KeepaliveInterval time.Duration
}

// IdentityConfig holds key material settings.
type IdentityConfig struct {
	// KeyFile is the path of the secret key file: a single line of hex.
	KeyFile string
}

// Config is the full loaded configuration.
type Config struct {
	Pool      PoolConfig
	Identity  IdentityConfig
	NTPServer string
}

// InitConfig wires viper to the config file, creating a default one on
// first run, and loads defaults.
func InitConfig() {
	if CfgFile != "" {
		viper.SetConfigFile(CfgFile)
	} else {
		viper.AddConfigPath(BuildPlumeDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	handleConfigFile()
}

func setDefaults() {
	viper.SetDefault("pool.relays", []string{})
	viper.SetDefault("pool.verify_events", true)
	viper.SetDefault("pool.keepalive_interval", "30s")
	viper.SetDefault("identity.key_file", filepath.Join(BuildPlumeDirPath(), "identity.key"))
	viper.SetDefault("ntp.server", "")
}

// Load returns the configuration currently known to viper.
func Load() *Config {
	return &Config{
		Pool: PoolConfig{
			Relays:            viper.GetStringSlice("pool.relays"),
			VerifyEvents:      viper.GetBool("pool.verify_events"),
			KeepaliveInterval: viper.GetDuration("pool.keepalive_interval"),
		},
		Identity: IdentityConfig{
			KeyFile: viper.GetString("identity.key_file"),
		},
		NTPServer: viper.GetString("ntp.server"),
	}
}

func handleConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if CfgFile != "" {
				log.Fatalf("Config file %s is not found: %s", CfgFile, err)
			} else {
				createDefaultConfig(BuildPlumeDirPath())
			}
		} else {
			log.Fatalf("Error reading config file: %s", err)
		}
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func createDefaultConfig(defaultConfigDir string) {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	if err := os.MkdirAll(defaultConfigDir, 0o755); err != nil {
		log.Fatalf("Could not create config directory: %s", err)
	}
	if err := viper.WriteConfigAs(defaultConfigFile); err != nil {
		log.Fatalf("Could not write default config file: %s", err)
	}
	log.Debugf("Created default configuration at: %s", defaultConfigFile)
}

// BuildPlumeDirPath returns the per-user plume directory.
func BuildPlumeDirPath() string {
	return filepath.Join(userHome(), PlumeBaseDir)
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.WithError(err).Warn("could not resolve home directory, using working directory")
		return "."
	}
	return home
}
