// Command initdb destructively recreates the database schema and seeds
// the default delivery coefficients. Run it once before starting the
// API server. Existing rows are dropped.
package main

import (
	"context"
	"log"
	"time"

	"jwfoods/api/internal/config"
	"jwfoods/api/internal/db"
	"jwfoods/api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, dialect, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	st := store.New(conn, dialect)
	defer st.Close()

	if err := st.Reset(ctx); err != nil {
		log.Fatalf("reset schema: %v", err)
	}

	seeded, err := st.SeedDefaults(ctx)
	if err != nil {
		log.Fatalf("seed defaults: %v", err)
	}
	if seeded {
		log.Println("initialized the database with default coefficients")
	} else {
		log.Println("database already initialized with coefficients, skipping default insertion")
	}
	log.Printf("database initialized successfully (%s)", dialect)
}
