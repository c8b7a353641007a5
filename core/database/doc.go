// Package database handles database connections for the snapshot store.
//
// It provides a wrapper around GORM to configure MySQL connections (the
// production driver) and sqlite connections (used by tests with an in-memory
// database) from the application's configuration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
