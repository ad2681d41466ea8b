package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/mocapboston/onboarding/internal/models"
)

// MongoStore keeps sessions as documents in a single MongoDB collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and verifies the connection
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (m *MongoStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	raw, err := m.collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return decodeSessionDocument(raw)
}

func (m *MongoStore) MergeSession(ctx context.Context, id string, patch models.SessionPatch) error {
	set := bson.M{}
	for field, value := range patch.Fields() {
		set[field] = value
	}
	set[models.FieldUpdatedAt] = time.Now()

	result, err := m.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (m *MongoStore) ListGallery(ctx context.Context, limit int) ([]*models.Session, error) {
	filter := bson.D{
		{Key: models.FieldGalleryVisible, Value: true},
		{Key: models.FieldProcessed, Value: true},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: models.FieldUpdatedAt, Value: -1},
		{Key: "_id", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}

	var docs []sessionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode gallery: %w", err)
	}

	sessions := make([]*models.Session, 0, len(docs))
	for i := range docs {
		sessions = append(sessions, docs[i].toSession())
	}
	return sessions, nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// sessionDocument is the stored shape of a session. The render worker writes
// gifID as false when its upload fails, so gifID is read as a raw value and
// anything but a string means "no gif yet".
type sessionDocument struct {
	ID             string        `bson:"_id"`
	GifID          bson.RawValue `bson:"gifID"`
	Solved         bool          `bson:"solved"`
	Processed      bool          `bson:"processed"`
	ShareAnswer    bool          `bson:"shareAnswer"`
	GalleryVisible bool          `bson:"galleryVisible"`
	CreatedAt      time.Time     `bson:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt"`
}

func (d *sessionDocument) toSession() *models.Session {
	gifID, _ := d.GifID.StringValueOK()
	return &models.Session{
		ID:             d.ID,
		GifID:          gifID,
		Solved:         d.Solved,
		Processed:      d.Processed,
		ShareAnswer:    d.ShareAnswer,
		GalleryVisible: d.GalleryVisible,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// decodeSessionDocument decodes one raw session document
func decodeSessionDocument(data []byte) (*models.Session, error) {
	var doc sessionDocument
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return doc.toSession(), nil
}
