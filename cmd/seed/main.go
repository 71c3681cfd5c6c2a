package main

import (
	"database/sql"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/SouzaGabriel26/onde-ir/config"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	"github.com/SouzaGabriel26/onde-ir/pkg/helpers"
)

// Seeds (or promotes) the ADMIN account named by SEED_ADMIN_EMAIL. Rerunning
// resets its password to SEED_ADMIN_PASSWORD.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.NewBcryptHasher(cfg.BcryptCost).Hash(cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, name, user_name, password, user_role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET password = EXCLUDED.password, user_role = EXCLUDED.user_role, updated_at = now()
		RETURNING id
	`, cfg.SeedAdminEmail, "Administrator", "admin", hash, string(entity.RoleAdmin)).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithField("user_id", id).WithField("email", cfg.SeedAdminEmail).Info("admin account seeded")
}
