// Package config loads and validates application configuration from
// environment variables and an optional config file. Configuration is
// resolved once at startup and passed explicitly to the components that
// need it; nothing in this package is consulted at request time.
package config
