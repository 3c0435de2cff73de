package config

import (
	"fmt"
	"time"

	"github.com/gotify/configor"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Env  string `default:"development" env:"APP_ENV"`
		Port string `default:"3000" env:"PORT"`
	}
	Database struct {
		Host       string `default:"127.0.0.1" env:"DB_HOST"`
		Port       string `default:"5432" env:"DB_PORT"`
		Name       string `default:"simple_hris" env:"DB_NAME"`
		User       string `default:"postgres" env:"DB_USER"`
		Password   string `default:"postgres" env:"DB_PASSWORD"`
		SSLMode    string `default:"disable" env:"DB_SSLMODE"`
		MaxRetries int    `default:"5" env:"DB_MAX_RETRIES"`
	}
	Redis struct {
		Addr string `default:"127.0.0.1:6379" env:"REDIS_ADDR"`
	}
	Kafka struct {
		Broker        string `default:"" env:"KAFKA_BROKER"`
		ConsumerGroup string `default:"simple-hris-user-import" env:"KAFKA_CONSUMER_GROUP"`
	}
	S3 struct {
		Endpoint        string `default:"127.0.0.1:9000" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"simple-hris" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
	}
	Auth struct {
		JWTSecret        string `default:"" env:"JWT_SECRET"`
		AccessTTLMinutes int    `default:"15" env:"JWT_ACCESS_TTL_MINUTES"`
		RefreshTTLHours  int    `default:"168" env:"JWT_REFRESH_TTL_HOURS"`
	}
	Seed struct {
		AdminName     string `default:"Administrator" env:"SEED_ADMIN_NAME"`
		AdminEmail    string `default:"" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `default:"" env:"SEED_ADMIN_PASSWORD"`
	}
	Import struct {
		MaxUploadBytes int64  `default:"10485760" env:"IMPORT_MAX_UPLOAD_BYTES"`
		ReaperSchedule string `default:"@every 1h" env:"IMPORT_REAPER_SCHEDULE"`
		ReaperMaxHours int    `default:"24" env:"IMPORT_REAPER_MAX_HOURS"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

// Load reads .env (when present) into the process environment, then fills
// Config from config.yml and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := configor.New(&configor.Config{}).Load(cfg, configFiles()...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Database.Host, c.Database.User, c.Database.Password,
		c.Database.Name, c.Database.Port, c.Database.SSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLHours) * time.Hour
}

func (c *Config) ImportReaperMaxAge() time.Duration {
	return time.Duration(c.Import.ReaperMaxHours) * time.Hour
}
