// Package config loads, normalizes, and validates transcriber configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// reads TOML files, loads an optional .env file, and honours environment
// fallbacks for secrets such as the translation API key and object storage
// credentials. Always obtain settings through this package so downstream
// code receives sanitized paths and clear validation errors.
package config
