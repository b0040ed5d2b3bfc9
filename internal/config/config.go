package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Session   SessionConfig   `mapstructure:"session" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// ShutdownTimeoutSeconds bounds how long a graceful shutdown waits for
	// in-flight requests before forcing the server down.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`

	MaxOpenConns    int `mapstructure:"max_open_conns" validate:"required,gt=0"`
	MaxIdleConns    int `mapstructure:"max_idle_conns" validate:"required,gt=0"`
	ConnMaxLifeMins int `mapstructure:"conn_max_life_mins" validate:"required,gt=0"`
}

// SessionConfig contains practice session defaults and housekeeping settings.
type SessionConfig struct {
	// DefaultDurationMinutes is the session length used when a client does
	// not specify one. It must fall within the allowed session bounds.
	DefaultDurationMinutes int `mapstructure:"default_duration_minutes" validate:"required,gte=5,lte=300"`

	// ExpirySweepSeconds is how often the server sweeps for sessions whose
	// time budget ran out without the client reporting it.
	ExpirySweepSeconds int `mapstructure:"expiry_sweep_seconds" validate:"required,gt=0"`
}

// SchedulerConfig contains problem selection settings.
type SchedulerConfig struct {
	// Strategy selects how the next problem is chosen during a session:
	// "continuous" re-scores the whole pool on every request, "batch"
	// composes a fixed queue up front.
	Strategy string `mapstructure:"strategy" validate:"required,oneof=continuous batch"`

	// BatchSize is the target problem count for batch sessions.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`
}
