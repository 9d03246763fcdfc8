package main

import (
	"context"
	"flag"
	"log"

	"github.com/obioha-dev/campusmarket/internal/config"
	"github.com/obioha-dev/campusmarket/internal/db"
)

func main() {
	product := flag.String("product", "", "product id to reset")
	all := flag.Bool("all", false, "reset every product's view counter")
	flag.Parse()
	if *product == "" && !*all {
		log.Fatal("usage: reset_views -product <id> | reset_views -all")
	}

	cfg := config.Load()
	db.Init(cfg.DatabaseURL)
	ctx := context.Background()

	if *all {
		tag, err := db.Conn.Exec(ctx, `UPDATE products SET views_count = 0`)
		if err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		log.Printf("reset view counters on %d products", tag.RowsAffected())
		return
	}

	tag, err := db.Conn.Exec(ctx, `
		UPDATE products SET views_count = 0 WHERE id = $1
	`, *product)
	if err != nil {
		log.Fatalf("reset failed: %v", err)
	}
	if tag.RowsAffected() == 0 {
		log.Fatalf("no product with id %s", *product)
	}

	log.Printf("reset view counter on product %s", *product)
}
