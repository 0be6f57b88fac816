// Package config loads the server configuration from flags, SCHEDULR_*
// environment variables and an optional YAML file using viper.
package config
