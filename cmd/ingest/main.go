// Command ingest registers the cards of a batch file straight into the
// database, bypassing the HTTP layer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"cardregistry/internal/config"
	"cardregistry/internal/db"
	apperr "cardregistry/internal/errors"
	"cardregistry/internal/metrics"
	"cardregistry/internal/repository"
	"cardregistry/internal/security"
	"cardregistry/internal/service"
)

func main() {
	path := flag.String("file", "", "path to the fixed-width batch file")
	owner := flag.String("owner", "", "optional user ID that will own the registered cards")
	flag.Parse()

	cfg := config.Load()
	log := cfg.Logging()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	ownerID := uuid.Nil
	if *owner != "" {
		id, err := uuid.Parse(*owner)
		if err != nil {
			log.Fatalf("invalid owner %q: %v", *owner, err)
		}
		ownerID = id
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hasher, err := security.NewPBKDF2Hasher(cfg.CardHashSalt)
	if err != nil {
		log.Fatalf("card hasher: %v", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open batch file: %v", err)
	}
	defer file.Close()

	cards := service.NewCardService(
		repository.NewCardRepository(gormDB),
		hasher,
		nil,
		metrics.Noop{},
		log.WithField("file", *path),
		cfg.BatchOptions(),
	)

	result, err := cards.CreateFromFile(context.Background(), file, ownerID)
	switch {
	case errors.Is(err, apperr.ErrNoCardsRegistered):
		fmt.Println(err.Error())
		return
	case err != nil:
		log.Fatalf("ingest: %v", err)
	}

	fmt.Println(result.Message())
	fmt.Printf("  created:   %d\n", result.Created)
	fmt.Printf("  skipped:   %d\n", result.Skipped)
	fmt.Printf("  malformed: %d\n", result.Malformed)
	if result.LotCode != "" {
		fmt.Printf("  lot:       %s\n", result.LotCode)
	}
}
