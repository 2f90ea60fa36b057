package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file into the process environment.
// A missing file is not an error; deployments set real env vars.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// GetEnvWithDefault returns the env var value or the default when unset.
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsInt returns the env var parsed as int, or the default.
func GetEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
