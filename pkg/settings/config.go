package settings

type Config struct {
	Logger Logger `mapstructure:"logger"`
	Pool   Pool   `mapstructure:"pool"`
	Server Server `mapstructure:"server"`
	Stress Stress `mapstructure:"stress"`
}

// Server is the configuration for the stats HTTP server.
// A zero Port disables the server.
type Server struct {
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge      int    `mapstructure:"max_age" validate:"gte=0"`
	MaxSize     int    `mapstructure:"max_size" validate:"gte=0"`
	Compress    bool   `mapstructure:"compress"`
}

// DefaultDrainInterval is the pool drain poll interval in milliseconds.
const DefaultDrainInterval = 10

// Pool is the configuration for the worker pool
type Pool struct {
	Workers       int `mapstructure:"workers" validate:"gte=1"`
	DrainInterval int `mapstructure:"drain_interval" validate:"gte=1"` // Milliseconds
}

// Stress is the configuration for the producer/consumer stress run
type Stress struct {
	Producers        int `mapstructure:"producers" validate:"gte=1"`
	ItemsPerProducer int `mapstructure:"items_per_producer" validate:"gte=1"`
	ShutdownTimeout  int `mapstructure:"shutdown_timeout" validate:"gte=1"` // Seconds
}
