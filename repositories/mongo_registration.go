package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"touroku/domain/registration"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoRegistrationRepository reads and writes the csn_data collection.
type MongoRegistrationRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	log        *slog.Logger
}

// OpenMongoRegistrationRepository connects, checks the server is reachable
// and makes sure the unique csn index exists.
func OpenMongoRegistrationRepository(ctx context.Context, uri, database, collection string, log *slog.Logger) (*MongoRegistrationRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	repo := NewMongoRegistrationRepository(client, client.Database(database).Collection(collection), log)
	if err = repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

func NewMongoRegistrationRepository(client *mongo.Client, collection *mongo.Collection, log *slog.Logger) *MongoRegistrationRepository {
	return &MongoRegistrationRepository{client: client, collection: collection, log: log}
}

// EnsureIndexes creates the unique index on csn that keeps concurrent upserts
// from inserting the same CSN twice.
func (m *MongoRegistrationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "csn", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("csn_unique"),
	})
	if err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}
	return nil
}

func (m *MongoRegistrationRepository) FindByCSN(ctx context.Context, csn string) (*registration.Record, error) {
	var doc registrationDocument
	err := m.collection.FindOne(ctx, byCSN(csn)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record := toRecord(doc)
	return &record, nil
}

func (m *MongoRegistrationRepository) Upsert(ctx context.Context, record registration.Record) error {
	_, err := m.collection.UpdateOne(ctx, byCSN(record.CSN), setDocument(record),
		options.UpdateOne().SetUpsert(true))
	return err
}

// Swap relies on findOneAndUpdate returning the document as it was before the update.
// No document back means the upsert inserted a new one.
func (m *MongoRegistrationRepository) Swap(ctx context.Context, record registration.Record) (*registration.Record, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	previous, err := m.findOneAndUpdate(ctx, record, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced on an absent CSN; the loser now finds the winner's document.
		m.log.Debug("Duplicate key on upsert, replaying swap", "csn", record.CSN)
		previous, err = m.findOneAndUpdate(ctx, record, opts)
	}
	return previous, err
}

func (m *MongoRegistrationRepository) findOneAndUpdate(ctx context.Context, record registration.Record, opts *options.FindOneAndUpdateOptionsBuilder) (*registration.Record, error) {
	var doc registrationDocument
	err := m.collection.FindOneAndUpdate(ctx, byCSN(record.CSN), setDocument(record), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	previous := toRecord(doc)
	return &previous, nil
}

func (m *MongoRegistrationRepository) List(ctx context.Context, limit int) ([]registration.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registration_date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := m.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []registrationDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]registration.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toRecord(doc))
	}
	return records, nil
}

func (m *MongoRegistrationRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Drop removes the whole collection, only meant for throwaway test collections.
func (m *MongoRegistrationRepository) Drop(ctx context.Context) error {
	return m.collection.Drop(ctx)
}

func (m *MongoRegistrationRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func byCSN(csn string) bson.D {
	return bson.D{{Key: "csn", Value: csn}}
}

func setDocument(record registration.Record) bson.D {
	doc := fromRecord(record)
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "registration_date", Value: doc.RegistrationDate},
		{Key: "amount", Value: doc.Amount},
	}}}
}
