package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/biomethane/internal/domain/models"
)

// Repository defines the feedstock catalog operations.
type Repository interface {
	Profile(ctx context.Context, kind string) (models.FeedstockProfile, error)
	Profiles(ctx context.Context) ([]models.FeedstockProfile, error)
	UpsertProfile(ctx context.Context, profile models.FeedstockProfile) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects, pings and ensures the unique kind index.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "feedstock_profiles",
	}

	_, err = r.collection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "kind", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure kind index: %w", err)
	}

	return r, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Profile loads the profile of one feedstock kind.
func (r *MongoDBRepository) Profile(ctx context.Context, kind string) (models.FeedstockProfile, error) {
	var profile models.FeedstockProfile
	err := r.collection().FindOne(ctx, bson.M{"kind": kind}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.FeedstockProfile{}, fmt.Errorf("%w: %s", models.ErrProfileNotFound, kind)
	}
	if err != nil {
		return models.FeedstockProfile{}, fmt.Errorf("failed to load profile %s: %w", kind, err)
	}
	return profile, nil
}

// Profiles lists the catalog ordered by kind.
func (r *MongoDBRepository) Profiles(ctx context.Context) ([]models.FeedstockProfile, error) {
	cursor, err := r.collection().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "kind", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.FeedstockProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return profiles, nil
}

// UpsertProfile inserts or replaces the profile keyed by its kind.
func (r *MongoDBRepository) UpsertProfile(ctx context.Context, profile models.FeedstockProfile) error {
	if profile.Kind == "" {
		return errors.New("profile kind must not be empty")
	}
	_, err := r.collection().ReplaceOne(ctx, bson.M{"kind": profile.Kind}, profile, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.Kind, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
