package auth

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/obioha-dev/campusmarket/internal/db"
)

// EnsureAdmin makes sure the configured admin account exists and carries the
// admin flag. Runs once at startup; a no-op when the env vars are unset.
func EnsureAdmin(email, password string) {
	if email == "" || password == "" {
		return
	}

	ctx := context.Background()

	var userID string
	err := db.Conn.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID)
	if err == nil {
		if _, err := db.Conn.Exec(ctx, `UPDATE users SET is_admin = TRUE WHERE id = $1`, userID); err != nil {
			log.Printf("admin bootstrap: could not promote %s: %v", email, err)
			return
		}
		log.Printf("admin bootstrap: %s promoted to admin", email)
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("admin bootstrap: lookup failed: %v", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("admin bootstrap: could not hash password: %v", err)
		return
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		log.Printf("admin bootstrap: could not start transaction: %v", err)
		return
	}
	defer tx.Rollback(ctx)

	userID = uuid.New().String()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, email, password, first_name, last_name, is_admin)
		VALUES ($1, 'admin', $2, $3, 'Site', 'Admin', TRUE)
	`, userID, email, string(hashed))
	if err != nil {
		log.Printf("admin bootstrap: could not create admin user: %v", err)
		return
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, user_id, role)
		VALUES ($1, $2, 'both')
	`, uuid.New().String(), userID)
	if err != nil {
		log.Printf("admin bootstrap: could not create admin profile: %v", err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("admin bootstrap: commit failed: %v", err)
		return
	}
	log.Printf("admin bootstrap: created admin account %s", email)
}
