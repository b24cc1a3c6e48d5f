// Package config provides configuration management for the material reconciler.
//
// It uses Viper to load configuration from environment variables and an
// optional .env file. Defaults come from the `default` struct tags of each
// section and are registered by reflection, so every key can be overridden
// with SECTION_KEY (e.g. MATCHING_AUTO_ACCEPT=0.9).
//
// # Configuration Structure
//
//   - Server: port, API key, JWT secret, rate limits, batch timeout
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Cache: optional Redis mapping cache
//   - Catalog: catalog source (database or storage snapshot)
//   - Mappings: mapping store backend (database or badger)
//   - Matching: thresholds and scoring weights
//   - Log: level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Matching.AutoAccept)
package config
