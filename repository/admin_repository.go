package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fazilniyaz/cable-net-complete-backend/models"
)

const (
	// Default credentials created on first start when the admins
	// collection is empty.
	DefaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	defaultAdminRole     = "admin"
)

// AdminRepository owns the admins collection, including the geojson
// feature collection embedded on each admin document.
type AdminRepository struct {
	db *mongo.Database
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Collection(CollAdmins).FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding admin: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Collection(CollAdmins).FindOne(ctx, bson.M{"username": username}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding admin: %w", err)
	}
	return &admin, nil
}

// RemoveFeatureForCoordinates pulls every feature whose coordinates both
// exactly equal the given pair, in a single update. Matching is by value,
// not identity: features that coincidentally share coordinates are all
// removed, and zero matches is a successful no-op. Returns ErrNotFound
// when the admin does not exist or carries no geojson.
func (r *AdminRepository) RemoveFeatureForCoordinates(ctx context.Context, adminID primitive.ObjectID, latitude, longitude float64) (*models.Admin, error) {
	filter := bson.M{
		"_id":     adminID,
		"geojson": bson.M{"$ne": nil},
	}
	update := bson.M{
		"$pull": bson.M{
			"geojson.features": bson.M{
				"coordinates.latitude":  latitude,
				"coordinates.longitude": longitude,
			},
		},
	}

	var admin models.Admin
	err := r.db.Collection(CollAdmins).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pruning geojson features: %w", err)
	}
	return &admin, nil
}

// UpdateGeoJSON replaces the admin's feature collection wholesale.
func (r *AdminRepository) UpdateGeoJSON(ctx context.Context, adminID primitive.ObjectID, geojson *models.FeatureCollection) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Collection(CollAdmins).FindOneAndUpdate(ctx,
		bson.M{"_id": adminID},
		bson.M{"$set": bson.M{"geojson": geojson}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating geojson: %w", err)
	}
	return &admin, nil
}

// Bootstrap creates the default admin account when none exists. Idempotent;
// runs to completion before the server starts accepting requests. A
// concurrent insert losing against the unique username index is treated as
// success.
func (r *AdminRepository) Bootstrap(ctx context.Context) error {
	count, err := r.db.Collection(CollAdmins).CountDocuments(ctx, bson.M{"username": DefaultAdminUsername})
	if err != nil {
		return fmt.Errorf("counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing default password: %w", err)
	}

	_, err = r.db.Collection(CollAdmins).InsertOne(ctx, models.Admin{
		Username:  DefaultAdminUsername,
		Password:  string(hash),
		Role:      defaultAdminRole,
		CreatedAt: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating default admin: %w", err)
	}

	log.Printf("Bootstrap: created default admin account %q", DefaultAdminUsername)
	return nil
}
