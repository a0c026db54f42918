package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "flowdeck"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for flowdeck settings.
const envPrefix = "FLOWDECK"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// DefaultEnvFile is read when present next to the working directory.
const DefaultEnvFile = ".env"

// LoadConfig loads configuration from defaults, a YAML file, a .env file and
// FLOWDECK_* environment variables, in rising precedence. Process variables
// win over .env entries. An empty configPath searches CWD, ./config and
// $HOME; a missing file is not an error. An empty envFile reads
// DefaultEnvFile if it exists.
func LoadConfig(configPath, envFile string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	envErr := applyEnvFile(viperCfg, envFile)
	if envErr != nil {
		return nil, envErr
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// applyEnvFile feeds FLOWDECK_* entries of a dotenv file into viperCfg
// without touching the process environment.
func applyEnvFile(viperCfg *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	entries, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read env file: %w", err)
	}

	for name, value := range entries {
		key, ok := envKey(name)
		if !ok {
			continue
		}

		if _, set := os.LookupEnv(name); set {
			continue
		}

		viperCfg.Set(key, value)
	}

	return nil
}

// envKey maps FLOWDECK_SERVER_READ_TIMEOUT to server.read_timeout.
func envKey(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, envPrefix+envKeySeparator)
	if !ok {
		return "", false
	}

	section, field, ok := strings.Cut(strings.ToLower(rest), envKeySeparator)
	if !ok || section == "" || field == "" {
		return "", false
	}

	return section + "." + field, true
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("deck.title", DefaultDeckTitle)
	viperCfg.SetDefault("deck.subtitle", DefaultDeckSubtitle)
	viperCfg.SetDefault("deck.theme", DefaultDeckTheme)
	viperCfg.SetDefault("deck.output", DefaultDeckOutput)
	viperCfg.SetDefault("deck.seed", DefaultDeckSeed)
	viperCfg.SetDefault("deck.multi_page", false)

	viperCfg.SetDefault("dataset.path", "")
	viperCfg.SetDefault("dataset.location", "")

	viperCfg.SetDefault("axis.start", "")
	viperCfg.SetDefault("axis.end", "")
	viperCfg.SetDefault("axis.step", DefaultAxisStep)
	viperCfg.SetDefault("axis.skip_start", "")
	viperCfg.SetDefault("axis.skip_end", "")

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)
	viperCfg.SetDefault("logging.file", "")
	viperCfg.SetDefault("logging.max_size_mb", DefaultLogMaxSizeMB)
	viperCfg.SetDefault("logging.max_backups", DefaultLogMaxBackups)
	viperCfg.SetDefault("logging.max_age_days", DefaultLogMaxAgeDays)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.trace_verbose", false)
}
