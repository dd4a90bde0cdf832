// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml, overridden from the environment
// (optionally populated from a .env file) and validated using struct tags.
// Every setting has a default, so running without a file is supported.
package config
