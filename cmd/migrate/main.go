package main

import (
	"log"

	"ai-notes-assistant/internal/config"
	"ai-notes-assistant/internal/model"
	"ai-notes-assistant/pkg/database"

	"gorm.io/gorm/logger"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection, logger.Warn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// The vector table only exists where pgvector holds the embeddings.
	withVectors := cfg.Database.Driver != database.DriverSQLite && cfg.Vector.Provider == "pgvector"

	log.Printf("Running AutoMigrate (driver=%s, vectors=%t)", cfg.Database.Driver, withVectors)
	if err := model.AutoMigrate(db, withVectors); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
