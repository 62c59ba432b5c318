package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"edu-platform/internal/config"
	pg "edu-platform/internal/infra/db/postgres"
	"edu-platform/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to the schema file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema %s: %v", *schemaPath, err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Println("schema applied")

	packageRepo := pg.NewPackageRepo(pool)
	packageUC := usecase.NewPackageUseCase(packageRepo)

	// If packages already exist, do nothing
	pkgs, err := packageUC.ListAll(ctx)
	if err != nil {
		log.Fatalf("list packages: %v", err)
	}
	if len(pkgs) > 0 {
		fmt.Printf("%d packages already present. No changes.\n", len(pkgs))
		for _, p := range pkgs {
			fmt.Printf("  - %s (grade=%s, days=%d, price=%d Toman)\n", p.Name, p.Grade, p.DurationDays, p.PriceToman)
		}
		return
	}

	// Seed a few sample packages per grade for testing the redemption flow
	seed := []struct {
		Name  string
		Grade string
		Days  int
		Price int64
	}{
		{"Konkur Math Crash Course", "12", 90, 1_890_000},
		{"Physics Full Package", "12", 180, 2_450_000},
		{"Chemistry Essentials", "11", 120, 1_150_000},
		{"Geometry Basics", "10", 90, 690_000},
	}

	for _, s := range seed {
		p, err := packageUC.Create(ctx, s.Name, s.Price, s.Days, s.Grade)
		if err != nil {
			log.Fatalf("create package %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, grade=%s, days=%d, price=%d Toman)\n", p.Name, p.ID, p.Grade, p.DurationDays, p.PriceToman)
	}

	fmt.Println("seeding complete")
}
