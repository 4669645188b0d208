package config

import "errors"

var (
	// ErrInvalidConfig marks a loaded configuration that failed Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps every failure to read or merge a config source.
	ErrLoadConfig = errors.New("load config failed")
	// ErrEnvFile narrows ErrLoadConfig to the dotenv layer.
	ErrEnvFile = errors.New("dotenv file")
)
