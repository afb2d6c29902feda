package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Fazilniyaz/cable-net-complete-backend/models"
)

// LocationRepository provides CRUD over the locations collection. Reads
// resolve the service references into embedded documents.
type LocationRepository struct {
	db *mongo.Database
}

func NewLocationRepository(db *mongo.Database) *LocationRepository {
	return &LocationRepository{db: db}
}

// LocationInput carries validated fields for create and update. Image and
// Image2 are pointers so update can distinguish "not given" from "given as
// empty".
type LocationInput struct {
	ServiceName primitive.ObjectID
	ServiceType primitive.ObjectID
	Notes       string
	Coordinates models.Coordinates
	Image       *string
	Image2      *string
}

// Stats is the dashboard aggregation: document counts per collection.
type Stats struct {
	Locations    int64 `json:"locations"`
	Services     int64 `json:"services"`
	ServiceTypes int64 `json:"serviceTypes"`
}

// resolvePipeline joins the service reference fields into embedded
// documents, the driver-level equivalent of populate().
func resolvePipeline(match bson.M) []bson.M {
	return []bson.M{
		{"$match": match},
		{
			"$lookup": bson.M{
				"from":         CollServices,
				"localField":   "serviceName",
				"foreignField": "_id",
				"as":           "serviceName",
			},
		},
		{"$unwind": bson.M{"path": "$serviceName", "preserveNullAndEmptyArrays": true}},
		{
			"$lookup": bson.M{
				"from":         CollServiceTypes,
				"localField":   "serviceType",
				"foreignField": "_id",
				"as":           "serviceType",
			},
		},
		{"$unwind": bson.M{"path": "$serviceType", "preserveNullAndEmptyArrays": true}},
		{"$sort": bson.M{"created_at": -1}},
	}
}

func (r *LocationRepository) resolve(ctx context.Context, match bson.M) ([]models.ResolvedLocation, error) {
	cursor, err := r.db.Collection(CollLocations).Aggregate(ctx, resolvePipeline(match))
	if err != nil {
		return nil, fmt.Errorf("resolving locations: %w", err)
	}
	defer cursor.Close(ctx)

	locations := []models.ResolvedLocation{}
	if err := cursor.All(ctx, &locations); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}
	return locations, nil
}

// List returns every location with its service references resolved.
func (r *LocationRepository) List(ctx context.Context) ([]models.ResolvedLocation, error) {
	return r.resolve(ctx, bson.M{})
}

// ListByServiceType returns resolved locations whose serviceType reference
// matches exactly.
func (r *LocationRepository) ListByServiceType(ctx context.Context, serviceTypeID primitive.ObjectID) ([]models.ResolvedLocation, error) {
	return r.resolve(ctx, bson.M{"serviceType": serviceTypeID})
}

// GetByID returns one resolved location or ErrNotFound.
func (r *LocationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ResolvedLocation, error) {
	locations, err := r.resolve(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, ErrNotFound
	}
	return &locations[0], nil
}

// Create persists a new location and returns it resolved.
func (r *LocationRepository) Create(ctx context.Context, in LocationInput) (*models.ResolvedLocation, error) {
	doc := models.Location{
		ServiceName: in.ServiceName,
		ServiceType: in.ServiceType,
		Notes:       in.Notes,
		Coordinates: in.Coordinates,
		CreatedAt:   time.Now().UTC(),
	}
	if in.Image != nil {
		doc.Image = *in.Image
	}
	if in.Image2 != nil {
		doc.Image2 = *in.Image2
	}

	result, err := r.db.Collection(CollLocations).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("inserting location: %w", err)
	}

	return r.GetByID(ctx, result.InsertedID.(primitive.ObjectID))
}

// Update replaces serviceName, serviceType, notes and coordinates
// unconditionally; image and image2 only when present in the input.
func (r *LocationRepository) Update(ctx context.Context, id primitive.ObjectID, in LocationInput) (*models.ResolvedLocation, error) {
	set := bson.M{
		"serviceName": in.ServiceName,
		"serviceType": in.ServiceType,
		"notes":       in.Notes,
		"coordinates": in.Coordinates,
	}
	if in.Image != nil {
		set["image"] = *in.Image
	}
	if in.Image2 != nil {
		set["image2"] = *in.Image2
	}

	result, err := r.db.Collection(CollLocations).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a location and returns the deleted document so the caller
// can cascade into the admin's geojson. The cascade itself lives in
// AdminRepository.RemoveFeatureForCoordinates; the two writes are
// independent and not transactional.
func (r *LocationRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	var deleted models.Location
	err := r.db.Collection(CollLocations).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting location: %w", err)
	}
	return &deleted, nil
}

// Stats counts locations, services and service types.
func (r *LocationRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error

	if stats.Locations, err = r.db.Collection(CollLocations).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("counting locations: %w", err)
	}
	if stats.Services, err = r.db.Collection(CollServices).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("counting services: %w", err)
	}
	if stats.ServiceTypes, err = r.db.Collection(CollServiceTypes).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("counting service types: %w", err)
	}
	return stats, nil
}
