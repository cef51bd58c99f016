package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/orchard/internal/paths"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBaseURL  = "base_url"
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"

	envPrefix  = "ORCHARD"
	envBaseURL = "ORCHARD_BASE_URL"

	defaultBaseURL  = "http://localhost:8000"
	defaultLogLevel = "warn"
)

// configFile is the structure of config.yaml.
type configFile struct {
	BaseURL  string `yaml:"base_url"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level"`
}

// loadConfig reads config.yaml from configDir. A missing file is not an
// error. ORCHARD_BASE_URL and ORCHARD_LOG_LEVEL override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBaseURL, defaultBaseURL)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	if err := v.BindEnv(cfgKeyBaseURL); err != nil {
		return nil, err
	}
	if err := v.BindEnv(cfgKeyLogLevel); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with cfg unless it exists.
// It reports whether the file was written.
func writeConfigIfMissing(configDir string, cfg configFile) (bool, error) {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// newLogger builds a JSON logger writing to w at level, or at debug when
// verbose is set.
func newLogger(w io.Writer, level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", cfgKeyLogLevel, level, err)
	}
	if verbose {
		lvl.SetLevel(zap.DebugLevel)
	}

	config := zap.NewProductionConfig()
	config.Level = lvl
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(config.EncoderConfig), zapcore.Lock(zapcore.AddSync(w)), config.Level)
	return zap.New(core).Named("orchard"), nil
}
