package repositories

import (
	"context"
	"time"

	"github.com/lost2found/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MatchRepository stores AI match history in MongoDB.
type MatchRepository interface {
	Insert(ctx context.Context, record *models.MatchRecord) error
	GetByItemID(ctx context.Context, itemID string) ([]models.MatchRecord, error)
}

// MongoMatchRepository implements MatchRepository for MongoDB
type MongoMatchRepository struct {
	collection *mongo.Collection
}

// NewMongoMatchRepository creates a new MongoMatchRepository
func NewMongoMatchRepository(db *mongo.Database) *MongoMatchRepository {
	return &MongoMatchRepository{collection: db.Collection("matches")}
}

func (r *MongoMatchRepository) Insert(ctx context.Context, record *models.MatchRecord) error {
	record.ID = primitive.NewObjectID()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *MongoMatchRepository) GetByItemID(ctx context.Context, itemID string) ([]models.MatchRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "score", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"item_id": itemID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MatchRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
