package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Audit    AuditConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	ConnTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	TokenExpiry   time.Duration
	AdminUser     string
	AdminPassword string
}

type AuditConfig struct {
	ElasticsearchURL      string
	ElasticsearchUser     string
	ElasticsearchPassword string
}

// Load reads configs/config.yaml if present and lets environment variables
// override every key (SERVER_PORT, DATABASE_HOST, AUTH_JWT_SECRET, ...).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "patient_registry")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.conn_timeout", "5s")

	v.SetDefault("auth.jwt_secret", "default_secret")
	v.SetDefault("auth.token_expiry", "1h")
	// Placeholder credential pair; override in real deployments.
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.admin_password", "veris123")

	v.SetDefault("audit.elasticsearch_url", "http://localhost:9200")
	v.SetDefault("audit.elasticsearch_user", "")
	v.SetDefault("audit.elasticsearch_password", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("/etc/patient-registry")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, the defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("database.host"),
			Port:        v.GetInt("database.port"),
			User:        v.GetString("database.user"),
			Password:    v.GetString("database.password"),
			Name:        v.GetString("database.name"),
			SSLMode:     v.GetString("database.sslmode"),
			MaxConns:    v.GetInt32("database.max_conns"),
			ConnTimeout: v.GetDuration("database.conn_timeout"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			TokenExpiry:   v.GetDuration("auth.token_expiry"),
			AdminUser:     v.GetString("auth.admin_user"),
			AdminPassword: v.GetString("auth.admin_password"),
		},
		Audit: AuditConfig{
			ElasticsearchURL:      v.GetString("audit.elasticsearch_url"),
			ElasticsearchUser:     v.GetString("audit.elasticsearch_user"),
			ElasticsearchPassword: v.GetString("audit.elasticsearch_password"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret must not be empty")
	}

	return cfg, nil
}
