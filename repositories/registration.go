//go:generate go run go.uber.org/mock/mockgen -source=registration.go -destination=../mocks/mock_registration_repository.go -package=mocks
package repositories

import (
	"context"
	"time"
	"touroku/domain/registration"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// IRegistrationRepository is the record store boundary, one document per CSN.
type IRegistrationRepository interface {
	// FindByCSN returns nil, nil when the CSN has never been registered.
	FindByCSN(ctx context.Context, csn string) (*registration.Record, error)
	Upsert(ctx context.Context, record registration.Record) error
	// Swap atomically stores record and returns the one it replaced, nil if none.
	Swap(ctx context.Context, record registration.Record) (*registration.Record, error)
	// List returns up to limit records, most recently registered first.
	List(ctx context.Context, limit int) ([]registration.Record, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

const keyPrefix = "csn:"

// registrationDocument keeps the field names of the csn_data collection.
type registrationDocument struct {
	CSN              string    `bson:"csn"`
	RegistrationDate time.Time `bson:"registration_date"`
	Amount           int64     `bson:"amount"`
}

func fromRecord(record registration.Record) registrationDocument {
	return registrationDocument{
		CSN:              record.CSN,
		RegistrationDate: record.RegisteredAt.UTC(),
		Amount:           record.Count,
	}
}

func toRecord(doc registrationDocument) registration.Record {
	return registration.Record{
		CSN:          doc.CSN,
		RegisteredAt: doc.RegistrationDate.UTC(),
		Count:        doc.Amount,
	}
}

func encodeRecord(record registration.Record) ([]byte, error) {
	return bson.Marshal(fromRecord(record))
}

func decodeRecord(data []byte) (registration.Record, error) {
	var doc registrationDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return registration.Record{}, err
	}
	return toRecord(doc), nil
}

func recordKey(csn string) []byte {
	return []byte(keyPrefix + csn)
}
