package config

import (
	"sync"
)

var (
	globalConfig Config
	initOnce     sync.Once
)

type Config struct {
	Server       ServerConfig       `json:"server" envPrefix:"SERVER_" validate:"required"`
	Database     DatabaseConfig     `json:"database" envPrefix:"DB_" validate:"required"`
	Redis        RedisConfig        `json:"redis" envPrefix:"REDIS_" validate:"required"`
	JWT          JWTConfig          `json:"jwt" envPrefix:"JWT_" validate:"required"`
	Bcrypt       BcryptConfig       `json:"bcrypt" envPrefix:"BCRYPT_" validate:"required"`
	Confirmation ConfirmationConfig `json:"confirmation" envPrefix:"CONFIRMATION_" validate:"required"`
	Throttle     ThrottleConfig     `json:"throttle" envPrefix:"THROTTLE_" validate:"required"`
	Mail         MailConfig         `json:"mail" envPrefix:"MAIL_" validate:"required"`
	Jobs         JobsConfig         `json:"jobs" envPrefix:"JOBS_" validate:"required"`
	SuperAdmin   SuperAdminConfig   `json:"super_admin" envPrefix:"SA_"`
}

type ServerConfig struct {
	Port         string   `json:"port" env:"PORT" validate:"required,numeric"`
	Host         string   `json:"host" env:"HOST" validate:"required,hostname|ip"`
	ReadTimeout  Duration `json:"read_timeout" env:"READ_TIMEOUT" validate:"required,duration_gt0"`
	WriteTimeout Duration `json:"write_timeout" env:"WRITE_TIMEOUT" validate:"required,duration_gt0"`
	SecureCookie bool     `json:"secure_cookie" env:"SECURE_COOKIE"`
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Enable only behind a proxy
	// that overwrites these headers.
	TrustProxy   bool     `json:"trust_proxy" env:"TRUST_PROXY"`
	LogLevel     string   `json:"log_level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
}

type DatabaseConfig struct {
	Host           string `json:"host" env:"HOST" validate:"required,hostname|ip"`
	Port           string `json:"port" env:"PORT" validate:"required,numeric"`
	User           string `json:"user" env:"USER" validate:"required"`
	Password       string `json:"password" env:"PASSWORD" validate:"required"`
	DBName         string `json:"db_name" env:"NAME" validate:"required"`
	SSLMode        string `json:"ssl_mode" env:"SSL_MODE" validate:"required,oneof=disable require verify-ca verify-full"`
	MaxOpenConns   int    `json:"max_open_conns" env:"MAX_OPEN_CONNS" validate:"gte=1"`
	MigrationsPath string `json:"migrations_path" env:"MIGRATIONS_PATH" validate:"required"`
}

type RedisConfig struct {
	Addr     string `json:"addr" env:"ADDR" validate:"required,hostname_port"`
	Password string `json:"password" env:"PASSWORD" validate:"omitempty"`
	DB       int    `json:"db" env:"DB" validate:"gte=0"`
}

// JWTConfig holds independent settings for access and refresh tokens.
// Secrets have no defaults.
type JWTConfig struct {
	AccessSecret  string   `json:"access_secret" env:"ACCESS_SECRET" validate:"required"`
	AccessTTL     Duration `json:"access_ttl" env:"ACCESS_TTL" validate:"required,duration_gt0"`
	RefreshSecret string   `json:"refresh_secret" env:"REFRESH_SECRET" validate:"required"`
	RefreshTTL    Duration `json:"refresh_ttl" env:"REFRESH_TTL" validate:"required,duration_gt0"`
}

type BcryptConfig struct {
	SaltFactor int `json:"salt_factor" env:"SALT_FACTOR" validate:"required,min=4,max=31"`
}

type ConfirmationConfig struct {
	CodeTTL Duration `json:"code_ttl" env:"CODE_TTL" validate:"required,duration_gt0"`
}

type ThrottleConfig struct {
	TTL   Duration `json:"ttl" env:"TTL" validate:"required,duration_gt0"`
	Limit int      `json:"limit" env:"LIMIT" validate:"required,gte=1"`
}

type MailConfig struct {
	Host      string `json:"host" env:"HOST" validate:"omitempty,hostname|ip"`
	Port      string `json:"port" env:"PORT" validate:"omitempty,numeric"`
	Username  string `json:"username" env:"USERNAME"`
	Password  string `json:"password" env:"PASSWORD"`
	From      string `json:"from" env:"FROM" validate:"omitempty,email"`
	BatchSize int    `json:"batch_size" env:"BATCH_SIZE" validate:"gte=1"`
	// LinkBaseURL is the public address the links in mails point at.
	LinkBaseURL string `json:"link_base_url" env:"LINK_BASE_URL" validate:"required,url"`
}

type JobsConfig struct {
	CleanupSpec string `json:"cleanup_spec" env:"CLEANUP_SPEC" validate:"required"`
	MailSpec    string `json:"mail_spec" env:"MAIL_SPEC" validate:"required"`
}

// SuperAdminConfig seeds a super admin account at startup when all fields are set.
type SuperAdminConfig struct {
	Login    string `json:"login" env:"LOGIN" validate:"omitempty,min=3,max=10"`
	Email    string `json:"email" env:"EMAIL" validate:"omitempty,email"`
	Password string `json:"password" env:"PASSWORD" validate:"omitempty,min=6"`
}

func (c SuperAdminConfig) Enabled() bool {
	return c.Login != "" && c.Email != "" && c.Password != ""
}
