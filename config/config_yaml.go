// Package config loads gemini-bridge.yaml and layers flag and environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/initializ/gemini-bridge/types"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "gemini-bridge.yaml"

// EnvPrefix prefixes every environment override, e.g.
// GEMINI_BRIDGE_GEMINI_BINARY or GEMINI_BRIDGE_SERVER_TRANSPORT.
const EnvPrefix = "GEMINI_BRIDGE"

// Override keys, shared by flags and environment variables.
const (
	KeyBinary        = "gemini.binary"
	KeyDefaultModel  = "gemini.default_model"
	KeyFallbackModel = "gemini.fallback_model"
	KeyTimeout       = "gemini.timeout"
	KeyWorkDir       = "gemini.work_dir"
	KeyTransport     = "server.transport"
	KeyAddr          = "server.addr"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
)

// LoadConfig reads and parses the config file at path. A missing file yields
// the defaults.
func LoadConfig(path string) (*types.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading gemini-bridge config %s: %w", path, err)
	}
	return types.ParseConfig(data)
}

// NewViper returns a viper instance that resolves override keys from
// GEMINI_BRIDGE_* environment variables. Callers bind flags onto it.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		KeyBinary, KeyDefaultModel, KeyFallbackModel, KeyTimeout, KeyWorkDir,
		KeyTransport, KeyAddr, KeyLogLevel, KeyLogFormat,
	} {
		_ = v.BindEnv(key)
	}
	return v
}

// ApplyOverrides copies every key set in v onto cfg and re-validates it.
func ApplyOverrides(cfg *types.Config, v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str(KeyBinary, &cfg.Gemini.Binary)
	str(KeyDefaultModel, &cfg.Gemini.DefaultModel)
	str(KeyFallbackModel, &cfg.Gemini.FallbackModel)
	str(KeyWorkDir, &cfg.Gemini.WorkDir)
	str(KeyTransport, &cfg.Server.Transport)
	str(KeyAddr, &cfg.Server.Addr)
	str(KeyLogLevel, &cfg.Log.Level)
	str(KeyLogFormat, &cfg.Log.Format)
	if v.IsSet(KeyTimeout) {
		timeout, err := cast.ToIntE(v.Get(KeyTimeout))
		if err != nil {
			return fmt.Errorf("gemini-bridge config: %s: %w", KeyTimeout, err)
		}
		cfg.Gemini.Timeout = timeout
	}
	return cfg.Validate()
}
