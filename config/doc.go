// Package config handles loading and parsing of configuration from YAML files,
// a .env file and environment variables. It defines the gateway configuration
// structure including server settings, keyword routing, engine availability,
// circuit breaker thresholds and logging.
package config
