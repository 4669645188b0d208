package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment names read by Load.
const (
	EnvPrefix  = "REHEARSE_"
	EnvConfig  = "REHEARSE_CONFIG"
	EnvEnvFile = "REHEARSE_ENV_FILE"

	defaultEnvFile = ".env"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. YAML file named by REHEARSE_CONFIG
//  3. dotenv file named by REHEARSE_ENV_FILE, or ./.env if present
//  4. process environment (prefix REHEARSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := loadDotenv(k); err != nil {
		return nil, err
	}

	// REHEARSE_QUEUE_SIZE -> queue_size; underscores match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
}

// loadDotenv merges prefixed keys from a dotenv file. An explicitly named
// file must exist; the default ./.env is optional.
func loadDotenv(k *koanf.Koanf) error {
	path, explicit := os.LookupEnv(EnvEnvFile)
	if !explicit || path == "" {
		path, explicit = defaultEnvFile, false
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w %s: %w", ErrLoadConfig, ErrEnvFile, path, err)
	}
	if err := k.Load(dotenvProvider(vars), nil); err != nil {
		return fmt.Errorf("%w: %w %s: %w", ErrLoadConfig, ErrEnvFile, path, err)
	}
	return nil
}

// dotenvProvider exposes parsed dotenv pairs as a koanf.Provider.
type dotenvProvider map[string]string

func (p dotenvProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("dotenv provider does not support ReadBytes")
}

func (p dotenvProvider) Read() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(p))
	for key, val := range p {
		if !strings.HasPrefix(strings.ToUpper(key), EnvPrefix) {
			continue
		}
		out[envKey(key)] = val
	}
	return out, nil
}
