package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is the latitude/longitude pair stored on a location and on
// each geojson feature. Both fields are always present together.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type Location struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ServiceName primitive.ObjectID `bson:"serviceName" json:"serviceName"`
	ServiceType primitive.ObjectID `bson:"serviceType" json:"serviceType"`
	Notes       string             `bson:"notes" json:"notes"`
	Coordinates Coordinates        `bson:"coordinates" json:"coordinates"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Image2      string             `bson:"image2,omitempty" json:"image2,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// ResolvedLocation is a Location with its service references replaced by
// the referenced documents. Dangling references decode as nil.
type ResolvedLocation struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	ServiceName *Service           `bson:"serviceName" json:"serviceName"`
	ServiceType *ServiceType       `bson:"serviceType" json:"serviceType"`
	Notes       string             `bson:"notes" json:"notes"`
	Coordinates Coordinates        `bson:"coordinates" json:"coordinates"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Image2      string             `bson:"image2,omitempty" json:"image2,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
