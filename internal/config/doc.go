// Package config loads generator configuration from fotosite.yml,
// FOTOSITE_* environment variables and command-line flags via Viper,
// and validates it before any work starts.
package config
