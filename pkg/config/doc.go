// Package config defines the Helios gateway configuration: YAML loading,
// defaults, validation, environment overrides, and file watching.
//
// Configuration is loaded in four steps: parse YAML, apply defaults, apply
// HELIOS_* environment overrides, then validate. Environment variables always
// take precedence over file values.
package config
