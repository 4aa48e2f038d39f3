package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// AdminToken guards the moderation endpoints. Empty disables them.
	AdminToken string `mapstructure:"admin_token" yaml:"admin_token"`

	// MaxMessageLength bounds chat message content, in characters.
	MaxMessageLength int `mapstructure:"max_message_length" yaml:"max_message_length"`

	// RateLimitMessages per RateLimitInterval is each connection's send
	// budget. Zero messages disables the limit.
	RateLimitMessages int           `mapstructure:"rate_limit_messages" yaml:"rate_limit_messages"`
	RateLimitInterval time.Duration `mapstructure:"rate_limit_interval" yaml:"rate_limit_interval"`

	// AuthRPS and AuthBurst bound per-IP calls to the auth endpoints.
	AuthRPS   float64 `mapstructure:"auth_rps" yaml:"auth_rps"`
	AuthBurst int     `mapstructure:"auth_burst" yaml:"auth_burst"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "relaychat.db",
		LogLevel:          "info",
		JWTSecret:         "change-me",
		JWTIssuer:         "relaychat",
		JWTAudience:       "relaychat",
		JWTTTL:            24 * time.Hour,
		MaxMessageLength:  256,
		RateLimitMessages: 30,
		RateLimitInterval: time.Minute,
		AuthRPS:           1,
		AuthBurst:         5,
	}
}
