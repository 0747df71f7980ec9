package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/tiendacafe/subscribers-api/config"
	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
)

// Demo subscribers for local development.
var seedData = []struct {
	name  string
	email string
}{
	{"Ana Gómez", "ana@example.com"},
	{"Luis Pérez", "luis@example.com"},
	{"María Fernández", "maria@example.com"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, s := range seedData {
		email := entity.NormalizeEmail(s.email)
		var id string
		err := db.QueryRow(`
			INSERT INTO subscribers (name, email)
			VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, entity.NormalizeName(s.name), email).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed subscriber %s: %v", email, err)
		}
		fmt.Printf("seeded subscriber: id=%s email=%s\n", id, email)
	}
}
