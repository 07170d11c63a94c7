package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"brokerdash/internal/config"
	"brokerdash/pkg/db"
	"brokerdash/pkg/logger"
)

func main() {
	cfg := config.Load()

	zlog := logger.NewLogger()
	defer zlog.Sync()

	fmt.Println("=== Setting Up Database ===")

	conn, err := db.NewConnection(cfg.DB, zlog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	fmt.Println("Connected to database")

	schema, err := os.ReadFile("migrations/schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema file: %v", err)
	}

	fmt.Println("Executing schema...")
	if _, err := conn.Exec(context.Background(), string(schema)); err != nil {
		log.Fatalf("Failed to execute schema: %v", err)
	}
	fmt.Println("Schema executed successfully")

	fmt.Println("=== Verifying Tables ===")
	tables := []string{"users", "clients", "client_stage_history", "tasks", "outbox_events"}

	for _, table := range tables {
		var exists bool
		query := `SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
		if err := conn.QueryRow(context.Background(), query, table).Scan(&exists); err != nil {
			fmt.Printf("Error checking table %q: %v\n", table, err)
			continue
		}

		if exists {
			fmt.Printf("Table %q created\n", table)
		} else {
			fmt.Printf("Table %q NOT created\n", table)
		}
	}

	fmt.Println("=== Database Setup Complete ===")
}
