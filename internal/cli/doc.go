// Package cli provides command-line interface setup and configuration
// for the vocabtable application. It handles flag parsing, command
// creation, configuration management using cobra and viper, flag
// validation and logger construction.
package cli
