package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"` // gin mode: debug, release or test
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"` // "memory" or a file path for SQLite
}

// LoggingConfig holds settings for the logger. Level may be changed while running.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AssessmentConfig points at definition files; empty paths use the embedded definitions.
type AssessmentConfig struct {
	FlowPath       string `mapstructure:"flow_path"`
	FactorsPath    string `mapstructure:"factors_path"`
	InputTypesPath string `mapstructure:"input_types_path"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

var (
	v  *viper.Viper
	mu sync.RWMutex
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.dsn", "memory")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)

	v.SetDefault("assessment.flow_path", "")
	v.SetDefault("assessment.factors_path", "")
	v.SetDefault("assessment.input_types_path", "")
}

// LoadConfig reads config.yaml from the given directories (or the usual locations when none are given),
// overlays MINDFUL_* environment variables and stores the result in AppConfig.
// A missing config file is not an error.
func LoadConfig(paths ...string) (*Config, error) {
	nv := viper.New()
	setDefaults(nv)

	nv.SetConfigName("config")
	nv.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config", ".", "../config"}
	}
	for _, p := range paths {
		nv.AddConfigPath(p)
	}

	nv.SetEnvPrefix("MINDFUL") // e.g. MINDFUL_SERVER_PORT
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := nv.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	mu.Lock()
	v = nv
	AppConfig = cfg
	mu.Unlock()
	return &cfg, nil
}

// Get returns a copy of the current configuration.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return AppConfig
}

// ConfigFile is the file LoadConfig read, or "" when defaults and environment were used.
func ConfigFile() string {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// WatchConfig reloads the configuration whenever the file changes and hands the new value to onChange.
// It does nothing when no file was loaded.
func WatchConfig(log *zap.Logger, onChange func(Config)) {
	mu.RLock()
	nv := v
	mu.RUnlock()
	if nv == nil || nv.ConfigFileUsed() == "" {
		return
	}

	nv.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		var cfg Config
		if err := nv.Unmarshal(&cfg); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		mu.Lock()
		AppConfig = cfg
		mu.Unlock()
		if onChange != nil {
			onChange(cfg)
		}
	})
	nv.WatchConfig()
}
