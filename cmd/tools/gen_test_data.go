package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"time"
	"touroku/domain/registration"
	"touroku/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

// Fills a badger directory with registrations spread over the last two days,
// so the inspector and cmd/viewer have something on both sides of the window.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	count := flag.Int("n", 50, "Number of registrations to generate")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	repository := repositories.NewBadgerRegistrationRepository(db, slog.Default())
	defer func() { _ = repository.Close(context.Background()) }()

	fmt.Println("🚀 touroku : generating test registrations...")

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	eligible := 0
	for i := range *count {
		age := time.Duration(rand.Int64N(int64(48 * time.Hour)))
		record := registration.Record{
			CSN:          fmt.Sprintf("CSN-%04d", i),
			RegisteredAt: now.Add(-age).Truncate(time.Millisecond),
			Count:        rand.Int64N(10) + 1,
		}
		if err := repository.Upsert(ctx, record); err != nil {
			log.Fatalf("Upsert %s: %v", record.CSN, err)
		}
		if registration.Decide(&record, now) == registration.Eligible {
			eligible++
		}
	}

	fmt.Printf("\n✅ %d registrations written to %s (%d eligible)\n", *count, *dbPath, eligible)
}
