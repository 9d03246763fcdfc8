package main

import (
	"context"
	"flag"
	"log"

	"github.com/obioha-dev/campusmarket/internal/config"
	"github.com/obioha-dev/campusmarket/internal/db"
)

func main() {
	email := flag.String("email", "", "email of the account to promote")
	flag.Parse()
	if *email == "" {
		log.Fatal("usage: promote_admin -email user@example.com")
	}

	cfg := config.Load()
	db.Init(cfg.DatabaseURL)

	tag, err := db.Conn.Exec(context.Background(), `
		UPDATE users SET is_admin = TRUE WHERE email = $1
	`, *email)
	if err != nil {
		log.Fatalf("promote failed: %v", err)
	}
	if tag.RowsAffected() == 0 {
		log.Fatalf("no account with email %s", *email)
	}

	log.Printf("%s is now an admin", *email)
}
