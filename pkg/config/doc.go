// Package config loads typed configuration structs from environment
// variables, optionally seeded from .env files.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11. Each
// struct type is parsed once and cached for the lifetime of the process, so
// packages can call Load from anywhere without re-reading the environment:
//
//	var cfg tenant.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Use LoadEnv to read explicit .env files before the first Load, and Reset
// in tests after changing the environment.
package config
