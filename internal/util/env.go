package util

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env from the working directory, or the file named by
// ENV_FILE. A missing default .env is not an error.
func LoadEnv() error {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func Getenv(key, defaultValue string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue
	}
	return val
}

// GetenvOptional falls back to defaultValue only when key is unset, so an
// explicit empty value can switch a feature off.
func GetenvOptional(key, defaultValue string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return strings.TrimSpace(val)
}
