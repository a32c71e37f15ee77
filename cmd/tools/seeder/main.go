package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

type seedProduct struct {
	Name       string
	PriceCents int64
	IsSmall    bool
}

// The standard pupusería menu. Every product is created in both doughs.
var menu = []seedProduct{
	{"queso", 60, true},
	{"frijol", 60, true},
	{"chicharron", 60, true},
	{"revuelta", 75, true},
	{"queso con loroco", 100, false},
	{"ayote", 100, false},
	{"camaron", 150, false},
	{"especial", 200, false},
}

var masas = []string{"maiz", "arroz"}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedCatalog(ctx, conn)
	seedOperatingDays(ctx, conn)

	log.Println("Seeding completed successfully!")
}

func seedCatalog(ctx context.Context, conn *pgx.Conn) {
	log.Println("Seeding products...")
	for _, p := range menu {
		for _, masa := range masas {
			_, err := conn.Exec(ctx, `
				INSERT INTO products (name, masa, price_cents, is_small)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (name, masa) DO UPDATE
				SET price_cents = EXCLUDED.price_cents,
				    is_small    = EXCLUDED.is_small,
				    updated_at  = now()
			`, p.Name, masa, p.PriceCents, p.IsSmall)
			if err != nil {
				log.Fatalf("Failed to seed product %s (%s): %v", p.Name, masa, err)
			}
		}
	}
	log.Printf("Seeded %d products", len(menu)*len(masas))
}

// seedOperatingDays records an example closure: the shop rests next Monday.
// Every other day stays open by default, no row needed.
func seedOperatingDays(ctx context.Context, conn *pgx.Conn) {
	log.Println("Seeding operating days...")
	day := time.Now().UTC()
	for day.Weekday() != time.Monday {
		day = day.AddDate(0, 0, 1)
	}
	_, err := conn.Exec(ctx, `
		INSERT INTO operating_days (day, is_open)
		VALUES ($1, FALSE)
		ON CONFLICT (day) DO UPDATE SET is_open = EXCLUDED.is_open
	`, day.Format("2006-01-02"))
	if err != nil {
		log.Fatalf("Failed to seed operating day: %v", err)
	}
	log.Printf("Marked %s as closed", day.Format("2006-01-02"))
}
