package main

import (
	"fintrack/internal/config" // Custom import path (Config)
	"fintrack/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())
}
