package main

import (
	"database/sql"
	"log"
	"os"

	"pronostix/internal/config"

	_ "github.com/lib/pq"
)

// Applies a raw SQL migration file: go run ./cmd/migrate <file.sql>
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <file.sql>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	migrationSQL, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	log.Printf("Applying migration: %s", os.Args[1])
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		log.Fatalf("Failed to execute migration: %v", err)
	}

	log.Println("Migration applied successfully")
}
