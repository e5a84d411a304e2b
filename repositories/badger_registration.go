package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"touroku/domain/registration"

	"github.com/dgraph-io/badger/v4"
)

// BadgerRegistrationRepository stores registrations under "csn:{csn}" keys.
// Values are the same bson documents the Mongo backend writes.
type BadgerRegistrationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerRegistrationRepository(db *badger.DB, log *slog.Logger) *BadgerRegistrationRepository {
	return &BadgerRegistrationRepository{db: db, log: log}
}

func (b *BadgerRegistrationRepository) FindByCSN(_ context.Context, csn string) (*registration.Record, error) {
	var record *registration.Record
	err := b.db.View(func(txn *badger.Txn) error {
		found, err := getRecord(txn, csn)
		record = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (b *BadgerRegistrationRepository) Upsert(_ context.Context, record registration.Record) error {
	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(record.CSN), data)
	})
}

// Swap reads and replaces the record inside one transaction.
// Badger aborts the commit with ErrConflict when another writer touched the key,
// in which case the whole read-write is replayed until it commits or ctx is done.
func (b *BadgerRegistrationRepository) Swap(ctx context.Context, record registration.Record) (*registration.Record, error) {
	data, err := encodeRecord(record)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %w", err)
	}

	for attempt := 1; ; attempt++ {
		var previous *registration.Record
		err = b.db.Update(func(txn *badger.Txn) error {
			found, err := getRecord(txn, record.CSN)
			if err != nil {
				return err
			}
			previous = found
			return txn.Set(recordKey(record.CSN), data)
		})
		if err == nil {
			return previous, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", err, ctxErr)
		}
		b.log.Debug("Transaction conflict, replaying swap", "csn", record.CSN, "attempt", attempt)
	}
}

func (b *BadgerRegistrationRepository) List(_ context.Context, limit int) ([]registration.Record, error) {
	var records []registration.Record
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				record, err := decodeRecord(val)
				if err != nil {
					b.log.Warn("Skipping undecodable record", "key", string(item.Key()), "error", err)
					return nil
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(records, limit), nil
}

func (b *BadgerRegistrationRepository) Ping(_ context.Context) error {
	if b.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return nil
}

func (b *BadgerRegistrationRepository) Close(_ context.Context) error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

func getRecord(txn *badger.Txn, csn string) (*registration.Record, error) {
	item, err := txn.Get(recordKey(csn))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record registration.Record
	err = item.Value(func(val []byte) error {
		decoded, err := decodeRecord(val)
		record = decoded
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	return &record, nil
}

func newestFirst(records []registration.Record, limit int) []registration.Record {
	slices.SortFunc(records, func(a, b registration.Record) int {
		return b.RegisteredAt.Compare(a.RegisteredAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}
