package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Store driver names accepted in STORE_DRIVER.
const (
	DriverRedis  = "redis"
	DriverMySQL  = "mysql"
	DriverMemory = "memory" // demo mode: nothing survives a restart
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Strings for identifiers and
// secrets, ints for durations and costs.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	JWTSecret         string // secret used to sign JWTs
	AccessTTLMin      int    // access token time-to-live in minutes
	AdminPasswordHash string // bcrypt hash of the shared admin password
	StoreDriver       string // redis | mysql | memory
	DBUser            string // database username (mysql driver only)
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
}

// Load reads configuration from environment variables. Required
// variables are enforced by must() and missing values exit with a
// fatal log message. The MySQL variables are only required when the
// mysql store driver is selected.
func Load() Config {
	cfg := Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		JWTSecret:         must("JWT_SECRET"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),
		StoreDriver:       getenv("STORE_DRIVER", DriverRedis),
	}
	switch cfg.StoreDriver {
	case DriverRedis, DriverMemory:
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	default:
		log.Fatalf("unknown STORE_DRIVER: %q", cfg.StoreDriver)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
