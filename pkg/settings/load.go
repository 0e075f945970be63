package settings

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. FAIRQUEUE_POOL_WORKERS.
const EnvPrefix = "FAIRQUEUE"

var validate = validator.New()

// setDefaults registers the values used when neither the file nor the environment sets a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", "info")
	v.SetDefault("logger.file_log_name", "")
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.max_size", 100)

	v.SetDefault("pool.workers", 4)
	v.SetDefault("pool.drain_interval", DefaultDrainInterval)

	v.SetDefault("server.mode", "release")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 0)

	v.SetDefault("stress.producers", 4)
	v.SetDefault("stress.items_per_producer", 10000)
	v.SetDefault("stress.shutdown_timeout", 30)
}

// Load reads the configuration from path (any format viper understands) and the
// environment, then validates it. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
