package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix は環境変数のプレフィックスです。
const EnvPrefix = "I18NSCAN"

// FromEnv reads every I18NSCAN_* variable that is set and non-blank.
// All parse failures are reported together.
func FromEnv(getenv func(string) string) (Config, error) {
	var cfg Config
	if getenv == nil {
		return cfg, nil
	}
	var errs []error
	for _, s := range settings {
		name := s.EnvName()
		raw := strings.TrimSpace(getenv(name))
		if raw == "" {
			continue
		}
		if err := s.assign(&cfg, raw, name); err != nil {
			errs = append(errs, err)
		}
	}
	return cfg, errors.Join(errs...)
}

// LoadDotenv は dir/.env があれば読み込みます。既存の環境変数は上書きしません。
func LoadDotenv(dir string) error {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	path := filepath.Join(dir, ".env")
	if !isRegular(path) {
		return nil
	}
	return godotenv.Load(path)
}
