package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// GetConfig builds the global config on first use: defaults, then the .json file named by CONFIG_PATH,
// then environment variables. The result is validated; missing JWT secrets are a configuration error.
func GetConfig() (*Config, error) {
	var initErr error
	initOnce.Do(func() {
		initErr = Load(&globalConfig)
	})
	if initErr != nil {
		return nil, initErr
	}

	return &globalConfig, nil
}

// Load fills cfg from defaults, json and env, and validates it.
func Load(cfg *Config) error {
	setDefaults(cfg)

	if err := loadFromJSON(cfg, getConfigPath()); err != nil {
		return fmt.Errorf("failed to load config from JSON: %w", err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

func setDefaults(cfg *Config) {
	cfg.Server = ServerConfig{
		Port:         "8080",
		Host:         "0.0.0.0",
		ReadTimeout:  Duration(30 * time.Second),
		WriteTimeout: Duration(30 * time.Second),
		SecureCookie: true,
		LogLevel:     "info",
	}

	cfg.Database = DatabaseConfig{
		Host:           "localhost",
		Port:           "5432",
		User:           "postgres",
		Password:       "password",
		DBName:         "blog",
		SSLMode:        "disable",
		MaxOpenConns:   20,
		MigrationsPath: "migrations",
	}

	cfg.Redis = RedisConfig{
		Addr: "localhost:6379",
		DB:   0,
	}

	// secrets are left empty on purpose
	cfg.JWT = JWTConfig{
		AccessTTL:  Duration(10 * time.Minute),
		RefreshTTL: Duration(20 * time.Minute),
	}

	cfg.Bcrypt = BcryptConfig{SaltFactor: 10}

	cfg.Confirmation = ConfirmationConfig{CodeTTL: Duration(time.Hour)}

	cfg.Throttle = ThrottleConfig{
		TTL:   Duration(10 * time.Second),
		Limit: 5,
	}

	cfg.Mail = MailConfig{
		Port:        "587",
		BatchSize:   20,
		LinkBaseURL: "http://localhost:8080",
	}

	cfg.Jobs = JobsConfig{
		CleanupSpec: "0 0 * * * *",
		MailSpec:    "*/10 * * * * *",
	}
}

func loadFromJSON(cfg *Config, configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cfg)
}

func loadFromEnv(cfg *Config) error {
	return env.Parse(cfg)
}

// getConfigPath reads path to .json config from CONFIG_PATH env variable
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return filepath.Join("config", "config.json")
}

func validate(cfg *Config) error {
	v := validator.New()

	// Duration must be greater than 0
	if err := v.RegisterValidation("duration_gt0", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(Duration)
		return ok && d > 0
	}); err != nil {
		return err
	}

	return v.Struct(cfg)
}
