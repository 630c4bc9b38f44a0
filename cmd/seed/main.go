package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-quest-bot/internal/config"
	pg "telegram-quest-bot/internal/infra/db/postgres"
	"telegram-quest-bot/internal/infra/logging"
	"telegram-quest-bot/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tokenUC := usecase.NewTokenUseCase(pg.NewTokenRepo(pool), logger)

	// If tokens already exist, do nothing
	tokens, err := tokenUC.ListAll(ctx)
	if err != nil {
		log.Fatalf("list tokens: %v", err)
	}
	if len(tokens) > 0 {
		fmt.Printf("%d tokens already present. No changes.\n", len(tokens))
		for _, t := range tokens {
			fmt.Printf("  - %s (id=%s, valid=%t)\n", t.Name, t.ID, t.Valid)
		}
		return
	}

	// Seed a few sample quest stations for local testing
	seed := []string{"station-entrance", "station-library", "station-cafeteria"}
	for _, name := range seed {
		t, err := tokenUC.Create(ctx, name)
		if err != nil {
			log.Fatalf("create token %q: %v", name, err)
		}
		fmt.Printf("seeded: %s (id=%s)\n", t.Name, t.ID)
	}

	fmt.Println("✅ Seeding complete.")
}
