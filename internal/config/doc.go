// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file, when present, is loaded first so credentials can stay out of the YAML.
// Core packages never read Config directly; cmd/ passes plain values into constructors.
package config
