package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"cosmossdk.io/log"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

const (
	FlagHome           = "home"
	FlagChainID        = "chain-id"
	FlagVKPath         = "vk-path"
	FlagAllowedClients = "allowed-clients"
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"

	EnvPrefix = "COMETBLSD"

	LogFormatPlain = "plain"
	LogFormatJSON  = "json"

	configDir  = "config"
	dataDir    = "data"
	configFile = "config.toml"
	dbName     = "host"
)

// DefaultNodeHome is the default home directory of cometblsd.
var DefaultNodeHome = os.ExpandEnv("$HOME/.cometblsd")

// Config is the cometblsd configuration read from config.toml, environment variables
// prefixed with COMETBLSD_ and command line flags, in increasing order of precedence.
type Config struct {
	Home           string
	ChainID        string
	VKPath         string
	AllowedClients []string
	LogLevel       string
	LogFormat      string
}

// DefaultConfig returns the configuration written by init.
func DefaultConfig() Config {
	return Config{
		Home:           DefaultNodeHome,
		ChainID:        "cometblsd-1",
		VKPath:         filepath.Join(configDir, "verifying_key.bin"),
		AllowedClients: clienttypes.DefaultAllowedClients,
		LogLevel:       zerolog.InfoLevel.String(),
		LogFormat:      LogFormatPlain,
	}
}

// ConfigFile returns the path of config.toml under home.
func ConfigFile(home string) string {
	return filepath.Join(home, configDir, configFile)
}

// ValidateBasic performs basic validation of the configuration.
func (cfg Config) ValidateBasic() error {
	if strings.TrimSpace(cfg.Home) == "" {
		return errors.New("home directory cannot be blank")
	}
	if strings.TrimSpace(cfg.ChainID) == "" {
		return errors.New("chain id cannot be blank")
	}
	if strings.TrimSpace(cfg.VKPath) == "" {
		return errors.New("verifying key path cannot be blank")
	}
	if err := clienttypes.NewParams(cfg.AllowedClients...).Validate(); err != nil {
		return fmt.Errorf("invalid %s: %w", FlagAllowedClients, err)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", FlagLogLevel, err)
	}
	if cfg.LogFormat != LogFormatPlain && cfg.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid %s %q, expected %s or %s", FlagLogFormat, cfg.LogFormat, LogFormatPlain, LogFormatJSON)
	}
	return nil
}

// Params returns the client params built from the allowed clients.
func (cfg Config) Params() clienttypes.Params {
	return clienttypes.NewParams(cfg.AllowedClients...)
}

// DBDir returns the directory holding the host database.
func (cfg Config) DBDir() string {
	return filepath.Join(cfg.Home, dataDir)
}

// VerifyingKeyFile returns the verifying key path, resolved against the home directory
// when relative.
func (cfg Config) VerifyingKeyFile() string {
	if filepath.IsAbs(cfg.VKPath) {
		return cfg.VKPath
	}
	return filepath.Join(cfg.Home, cfg.VKPath)
}

// LoadVerifyingKey reads and decodes the verifying key.
func (cfg Config) LoadVerifyingKey() (zkp.VerifyingKey, error) {
	bz, err := os.ReadFile(cfg.VerifyingKeyFile())
	if err != nil {
		return zkp.VerifyingKey{}, fmt.Errorf("failed to read verifying key: %w", err)
	}
	return zkp.UnmarshalVerifyingKey(bz)
}

// NewLogger returns the logger selected by the configured level and format.
func (cfg Config) NewLogger(w io.Writer) (log.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []log.Option{log.LevelOption(level)}
	if cfg.LogFormat == LogFormatJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(FlagHome, defaults.Home)
	v.SetDefault(FlagChainID, defaults.ChainID)
	v.SetDefault(FlagVKPath, defaults.VKPath)
	v.SetDefault(FlagAllowedClients, defaults.AllowedClients)
	v.SetDefault(FlagLogLevel, defaults.LogLevel)
	v.SetDefault(FlagLogFormat, defaults.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// readConfig merges config.toml, when present, into v and returns the resulting configuration.
func readConfig(v *viper.Viper) (Config, error) {
	home := v.GetString(FlagHome)
	v.SetConfigFile(ConfigFile(home))
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	allowedClients, err := cast.ToStringSliceE(v.Get(FlagAllowedClients))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagAllowedClients, err)
	}

	cfg := Config{
		Home:           home,
		ChainID:        cast.ToString(v.Get(FlagChainID)),
		VKPath:         cast.ToString(v.Get(FlagVKPath)),
		AllowedClients: allowedClients,
		LogLevel:       cast.ToString(v.Get(FlagLogLevel)),
		LogFormat:      cast.ToString(v.Get(FlagLogFormat)),
	}
	return cfg, cfg.ValidateBasic()
}

// writeConfig writes cfg to config.toml under its home directory.
func writeConfig(cfg Config) error {
	if err := os.MkdirAll(filepath.Join(cfg.Home, configDir), 0o755); err != nil {
		return err
	}

	v := viper.New()
	v.Set(FlagChainID, cfg.ChainID)
	v.Set(FlagVKPath, cfg.VKPath)
	v.Set(FlagAllowedClients, cfg.AllowedClients)
	v.Set(FlagLogLevel, cfg.LogLevel)
	v.Set(FlagLogFormat, cfg.LogFormat)
	return v.WriteConfigAs(ConfigFile(cfg.Home))
}
