package accumulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wikiharvest/internal/types"
)

// recordID is the fixed _id of the single accumulator document. One record,
// replaced whole on save, mirroring the file backend's contract.
const recordID = "word-counts"

// MongoStore keeps the accumulator in a single MongoDB document. Counts are
// stored as an array of word/count pairs because document keys cannot
// contain every character a scraped word can.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

type mongoRecord struct {
	ID        string       `bson:"_id"`
	Counts    []mongoEntry `bson:"counts"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

type mongoEntry struct {
	Word  string `bson:"word"`
	Count int    `bson:"count"`
}

// NewMongoStore connects to MongoDB and returns a document-backed store.
func NewMongoStore(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongo", Err: fmt.Errorf("connect: %w", err)}
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, &types.StorageError{Backend: "mongo", Err: fmt.Errorf("ping: %w", err)}
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_store"),
	}, nil
}

func (s *MongoStore) Name() string { return "mongo" }

// Load fetches the accumulator document. No document yet means an empty map.
func (s *MongoStore) Load(ctx context.Context) (map[string]int, error) {
	var record mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": recordID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Debug("no accumulator document, starting empty")
			return make(map[string]int), nil
		}
		return nil, &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("find: %w", err)}
	}

	counts := make(map[string]int, len(record.Counts))
	for _, entry := range record.Counts {
		if entry.Count < 0 {
			return nil, &types.StorageError{
				Backend: s.Name(),
				Err:     fmt.Errorf("negative count %d for word %q", entry.Count, entry.Word),
			}
		}
		counts[entry.Word] = entry.Count
	}
	return counts, nil
}

// Save upserts the single document, replacing it whole.
func (s *MongoStore) Save(ctx context.Context, counts map[string]int) error {
	record := mongoRecord{
		ID:        recordID,
		Counts:    make([]mongoEntry, 0, len(counts)),
		UpdatedAt: time.Now(),
	}
	for word, count := range counts {
		record.Counts = append(record.Counts, mongoEntry{Word: word, Count: count})
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": recordID}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("replace: %w", err)}
	}
	s.logger.Debug("accumulator saved", "words", len(counts))
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	disconnectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(disconnectCtx)
}
