package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/launchbay/onboarding-api/config"
	"github.com/launchbay/onboarding-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := envOr("SEED_ADMIN_EMAIL", "admin@example.com")
	password := envOr("SEED_ADMIN_PASSWORD", "password123")
	name := envOr("SEED_ADMIN_NAME", "Admin")
	role := envOr("SEED_ADMIN_ROLE", "SUPER_ADMIN")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO admins (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
		RETURNING id
	`, email, name, hash, role).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s role=%s password=%s\n", id, email, role, password)

	// A couple of demo waitlist entries for local dashboards.
	demo := []struct {
		name, email, company string
		interests            []string
	}{
		{"Ada Demo", "ada@example.com", "Demo Labs", []string{"analytics", "automation"}},
		{"Lin Demo", "lin@example.com", "", []string{"integrations"}},
	}
	for _, d := range demo {
		var userID string
		if err := db.QueryRow(`
			INSERT INTO users (email, name)
			VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, d.email, d.name).Scan(&userID); err != nil {
			log.Fatalf("failed to seed user %s: %v", d.email, err)
		}

		var company any
		if d.company != "" {
			company = d.company
		}
		// database/sql has no native text[] support; pass an array literal.
		interests := "{" + strings.Join(d.interests, ",") + "}"
		if _, err := db.Exec(`
			INSERT INTO waitlist_entries (user_id, name, email, company, interests, status)
			VALUES ($1, $2, $3, $4, $5::text[], 'ACTIVE')
			ON CONFLICT (email) DO NOTHING
		`, userID, d.name, d.email, company, interests); err != nil {
			log.Fatalf("failed to seed waitlist entry %s: %v", d.email, err)
		}
		fmt.Printf("seeded waitlist entry: %s\n", d.email)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
