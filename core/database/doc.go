// Package database handles database connections.
//
// It wraps GORM so the rest of the application receives a ready *gorm.DB for
// either MySQL (production mapping store) or SQLite (local runs and tests).
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
