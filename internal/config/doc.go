// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. The container catalog and the packaging
// synonym table are loaded from their own YAML files so operators can extend
// them without code changes.
package config
