package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"
	"touroku/domain/registration"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerRegistrationRepository(t *testing.T) {
	repo := NewBadgerRegistrationRepository(openBadger(t), slog.Default())
	exerciseRepository(t, repo, "")
}

func TestBadgerRegistrationRepository_ConcurrentSwapsSeeEachOther(t *testing.T) {
	req := require.New(t)
	repo := NewBadgerRegistrationRepository(openBadger(t), slog.Default())
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	const writers = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			previous, err := repo.Swap(ctx, registration.Record{CSN: "RACE", RegisteredAt: at, Count: int64(i)})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if previous == nil {
				created++
			}
		}(i)
	}
	wg.Wait()

	req.Empty(errs)
	req.Equal(1, created)

	stored, err := repo.FindByCSN(ctx, "RACE")
	req.NoError(err)
	req.NotNil(stored)
}

func TestBadgerRegistrationRepository_PingAfterClose(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repo := NewBadgerRegistrationRepository(db, slog.Default())

	req.NoError(repo.Close(context.Background()))
	req.Error(repo.Ping(context.Background()))
}
