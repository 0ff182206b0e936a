package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/atadzan/calc-operation-api/pkg/database"
)

const (
	InvokerHTTP   = "http"
	InvokerLambda = "lambda"
)

// Config is built once at startup and handed to constructors; nothing else reads the environment.
type Config struct {
	HTTPPort  int
	GRPCPort  int
	LogLevel  string
	LogPretty bool

	DBDriver string
	DBDSN    string

	JWTSecret string

	AccountInvoker     string
	AccountServiceURL  string
	AccountFunctionARN string
	DebitPath          string
	ProfilePath        string
	AWSRegion          string
	RemoteTimeout      time.Duration

	RandomStringEndpoint string

	SaveRetryMax  int
	SaveRetryBase time.Duration

	AnnualTarget decimal.Decimal
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	target, err := decimal.NewFromString(getEnv("ANNUAL_OPERATION_CASH_TARGET", "5000"))
	if err != nil {
		return nil, fmt.Errorf("ANNUAL_OPERATION_CASH_TARGET: %w", err)
	}

	cfg := &Config{
		HTTPPort:             getEnvAsInt("HTTP_PORT", 8080),
		GRPCPort:             getEnvAsInt("GRPC_PORT", 50051),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogPretty:            getEnvAsBool("LOG_PRETTY", false),
		DBDriver:             getEnv("DB_DRIVER", database.DriverSQLite),
		DBDSN:                getEnv("DB_DSN", "operations.db"),
		JWTSecret:            getEnv("JWT_SECRET_KEY", ""),
		AccountInvoker:       getEnv("ACCOUNT_INVOKER", InvokerHTTP),
		AccountServiceURL:    getEnv("ACCOUNT_SERVICE_URL", ""),
		AccountFunctionARN:   getEnv("ACCOUNT_FUNCTION_ARN", ""),
		DebitPath:            getEnv("USER_DEBIT_API_PATH", "/user/balance/debit"),
		ProfilePath:          getEnv("USER_PROFILE_API_PATH", "/user/profile"),
		AWSRegion:            getEnv("AWS_REGION", ""),
		RemoteTimeout:        getEnvAsDuration("REMOTE_TIMEOUT", 10*time.Second),
		RandomStringEndpoint: getEnv("RANDOM_STRING_ENDPOINT", ""),
		SaveRetryMax:         getEnvAsInt("SAVE_RETRY_MAX", 3),
		SaveRetryBase:        getEnvAsDuration("SAVE_RETRY_BASE", 2*time.Second),
		AnnualTarget:         target,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.RandomStringEndpoint == "" {
		return fmt.Errorf("RANDOM_STRING_ENDPOINT is required")
	}
	switch c.DBDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver)
	}
	switch c.AccountInvoker {
	case InvokerHTTP:
		if c.AccountServiceURL == "" {
			return fmt.Errorf("ACCOUNT_SERVICE_URL is required for the http invoker")
		}
	case InvokerLambda:
		if c.AccountFunctionARN == "" {
			return fmt.Errorf("ACCOUNT_FUNCTION_ARN is required for the lambda invoker")
		}
	default:
		return fmt.Errorf("ACCOUNT_INVOKER %q is not supported", c.AccountInvoker)
	}
	if c.SaveRetryMax < 0 {
		return fmt.Errorf("SAVE_RETRY_MAX must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}
