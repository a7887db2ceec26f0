// Package config loads the quote engine settings from defaults, an optional
// config.yaml, a .env file and TEOLGOGO_ environment variables, then validates
// the result before any component is built from it.
package config
