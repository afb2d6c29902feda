package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feature is one entry of an admin's feature collection. The geometry and
// properties come straight from the map drawing tool and are stored as-is;
// only the coordinates pair is interpreted, as the value join key back to
// locations.
type Feature struct {
	Type        string      `bson:"type,omitempty" json:"type,omitempty"`
	Geometry    bson.M      `bson:"geometry,omitempty" json:"geometry,omitempty"`
	Properties  bson.M      `bson:"properties,omitempty" json:"properties,omitempty"`
	Coordinates Coordinates `bson:"coordinates" json:"coordinates"`
}

type FeatureCollection struct {
	Type     string    `bson:"type,omitempty" json:"type,omitempty"`
	Features []Feature `bson:"features" json:"features"`
}

type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	GeoJSON   *FeatureCollection `bson:"geojson,omitempty" json:"geojson,omitempty"`
}

// AdminProfile is the public shape of an admin, safe to return to clients.
type AdminProfile struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
	Role     string             `json:"role"`
	GeoJSON  *FeatureCollection `json:"geojson,omitempty"`
}

func (a *Admin) Profile() AdminProfile {
	return AdminProfile{
		ID:       a.ID,
		Username: a.Username,
		Role:     a.Role,
		GeoJSON:  a.GeoJSON,
	}
}
