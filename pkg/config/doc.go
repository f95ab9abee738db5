// Package config loads environment-driven configuration structs.
//
// Structs declare their variables with `env` tags (see caarlos0/env); a .env
// file is honored once per process for local development. Each configuration
// type is parsed exactly once and cached, which keeps configuration stable
// for the lifetime of the process.
package config
