package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"orderingRoles/internal/role"
)

// Allow-list sources accepted in ADMIN_SOURCE.
const (
	AdminSourceStatic = "static"
	AdminSourceSQLite = "sqlite"
	AdminSourceRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	GRPC     GRPCConfig
	Auth     AuthConfig
	Admins   AdminsConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string // gRPC server listen address (e.g., ":50051")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string        // JWT signing secret
	TokenTTL  time.Duration // lifetime of issued session tokens
	IDPSecret string        // verifies ID tokens from the identity provider
	IDPIssuer string        // expected iss of ID tokens; empty skips the check
}

// AdminsConfig selects where the admin allow-list is loaded from.
type AdminsConfig struct {
	Source    string   // static | sqlite | redis
	Usernames []string // used by the static source
	RedisURL  string
	RedisKey  string // Redis set holding the allow-list
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg, err := load(getEnv("JWT_SECRET", ""), getEnv("IDP_SECRET", ""))
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	if cfg.Auth.IDPSecret == "" {
		return nil, fmt.Errorf("IDP_SECRET environment variable is not set; required to verify sign-ins")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	return load(getEnv("JWT_SECRET", "dev-secret-change-me"), getEnv("IDP_SECRET", "dev-idp-secret-change-me"))
}

func load(secret, idpSecret string) (*Config, error) {
	ttl, err := getEnvDuration("TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl)
	}
	cfg := &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "app.db"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Auth: AuthConfig{
			JWTSecret: secret,
			TokenTTL:  ttl,
			IDPSecret: idpSecret,
			IDPIssuer: getEnv("IDP_ISSUER", ""),
		},
		Admins: AdminsConfig{
			Source:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_SOURCE", AdminSourceStatic))),
			Usernames: getEnvList("ADMIN_USERNAMES", role.DefaultAdmins()),
			RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
			RedisKey:  getEnv("REDIS_ADMIN_KEY", "admin_usernames"),
		},
	}
	// A shared secret would let session tokens pass as ID tokens.
	if secret != "" && secret == idpSecret {
		return nil, fmt.Errorf("IDP_SECRET must differ from JWT_SECRET")
	}
	switch cfg.Admins.Source {
	case AdminSourceStatic, AdminSourceSQLite, AdminSourceRedis:
	default:
		return nil, fmt.Errorf("invalid ADMIN_SOURCE %q: want static, sqlite or redis", cfg.Admins.Source)
	}
	return cfg, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvDuration retrieves an environment variable as a time.Duration with a default fallback.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// getEnvList splits a comma-separated variable. Set-but-empty yields an empty list.
func getEnvList(key string, defaultVal []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		out := make([]string, len(defaultVal))
		copy(out, defaultVal)
		return out
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, gRPC: %s, Auth: *** (masked) ***, TokenTTL: %s, IDPIssuer: %q, Admins: %s}",
		c.Database.Path, c.GRPC.Address, c.Auth.TokenTTL, c.Auth.IDPIssuer, c.Admins.Source)
}
