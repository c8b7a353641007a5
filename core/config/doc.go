// Package config provides configuration management for goldwatch.
//
// It utilizes Viper for loading configuration from environment variables and
// a local .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL/sqlite connection details
//   - Log: Logging level and format
//   - Feed: external gold price feed endpoint and schedule
//   - Cache: read-path TTL cache settings
//
// Defaults come from `default:` struct tags, bound recursively through
// reflection so that AutomaticEnv picks up every key.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
