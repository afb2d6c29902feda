package repository

// Integration tests against a real MongoDB. They skip unless
// TEST_MONGO_URI is set, e.g.:
//
//	TEST_MONGO_URI=mongodb://localhost:27017 go test ./repository/

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fazilniyaz/cable-net-complete-backend/models"
)

func testDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("cablenet_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func seedServices(t *testing.T, db *mongo.Database) (primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	ctx := context.Background()

	service, err := db.Collection(CollServices).InsertOne(ctx, models.Service{Name: "Fiber 100"})
	require.NoError(t, err)
	serviceType, err := db.Collection(CollServiceTypes).InsertOne(ctx, models.ServiceType{Name: "broadband"})
	require.NoError(t, err)

	return service.InsertedID.(primitive.ObjectID), serviceType.InsertedID.(primitive.ObjectID)
}

func seedAdmin(t *testing.T, db *mongo.Database, geojson *models.FeatureCollection) primitive.ObjectID {
	t.Helper()

	result, err := db.Collection(CollAdmins).InsertOne(context.Background(), models.Admin{
		Username:  "mapadmin",
		Password:  "x",
		Role:      "admin",
		CreatedAt: time.Now().UTC(),
		GeoJSON:   geojson,
	})
	require.NoError(t, err)
	return result.InsertedID.(primitive.ObjectID)
}

func featureAt(lat, lng float64) models.Feature {
	return models.Feature{
		Type: "Feature",
		Geometry: bson.M{
			"type":        "Point",
			"coordinates": []float64{lng, lat},
		},
		Coordinates: models.Coordinates{Latitude: lat, Longitude: lng},
	}
}

func TestLocationCreateGetRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	serviceID, serviceTypeID := seedServices(t, db)
	repo := NewLocationRepository(db)

	// Zero coordinates are legal on create
	created, err := repo.Create(ctx, LocationInput{
		ServiceName: serviceID,
		ServiceType: serviceTypeID,
		Coordinates: models.Coordinates{Latitude: 0, Longitude: 0},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Coordinates.Latitude)
	assert.Equal(t, 0.0, got.Coordinates.Longitude)
	assert.Equal(t, "", got.Notes)

	// References come back resolved
	require.NotNil(t, got.ServiceName)
	require.NotNil(t, got.ServiceType)
	assert.Equal(t, "Fiber 100", got.ServiceName.Name)
	assert.Equal(t, "broadband", got.ServiceType.Name)
}

func TestLocationListByServiceType(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	serviceID, serviceTypeID := seedServices(t, db)
	otherType, err := db.Collection(CollServiceTypes).InsertOne(ctx, models.ServiceType{Name: "cable-tv"})
	require.NoError(t, err)
	repo := NewLocationRepository(db)

	_, err = repo.Create(ctx, LocationInput{
		ServiceName: serviceID,
		ServiceType: serviceTypeID,
		Coordinates: models.Coordinates{Latitude: 1, Longitude: 2},
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, LocationInput{
		ServiceName: serviceID,
		ServiceType: otherType.InsertedID.(primitive.ObjectID),
		Coordinates: models.Coordinates{Latitude: 3, Longitude: 4},
	})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListByServiceType(ctx, serviceTypeID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "broadband", filtered[0].ServiceType.Name)
}

func TestLocationUpdatePartialImages(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	serviceID, serviceTypeID := seedServices(t, db)
	repo := NewLocationRepository(db)

	image := "https://res.cloudinary.com/cablenet/a.jpg"
	created, err := repo.Create(ctx, LocationInput{
		ServiceName: serviceID,
		ServiceType: serviceTypeID,
		Coordinates: models.Coordinates{Latitude: 5, Longitude: 6},
		Image:       &image,
	})
	require.NoError(t, err)
	require.Equal(t, image, created.Image)

	// Image omitted from the update payload survives
	updated, err := repo.Update(ctx, created.ID, LocationInput{
		ServiceName: serviceID,
		ServiceType: serviceTypeID,
		Notes:       "rewired",
		Coordinates: models.Coordinates{Latitude: 5.5, Longitude: 6.5},
	})
	require.NoError(t, err)
	assert.Equal(t, image, updated.Image)
	assert.Equal(t, "rewired", updated.Notes)
	assert.Equal(t, 5.5, updated.Coordinates.Latitude)

	// Image explicitly given as empty is cleared
	empty := ""
	updated, err = repo.Update(ctx, created.ID, LocationInput{
		ServiceName: serviceID,
		ServiceType: serviceTypeID,
		Coordinates: models.Coordinates{Latitude: 5.5, Longitude: 6.5},
		Image:       &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Image)
}

func TestLocationNotFound(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewLocationRepository(db)

	_, err := repo.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Delete(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, primitive.NewObjectID(), LocationInput{
		Coordinates: models.Coordinates{Latitude: 1, Longitude: 1},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFeatureForCoordinates(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	admins := NewAdminRepository(db)

	t.Run("removes exactly the matching feature", func(t *testing.T) {
		adminID := seedAdmin(t, db, &models.FeatureCollection{
			Type: "FeatureCollection",
			Features: []models.Feature{
				featureAt(10.5, 20.5),
				featureAt(1, 2),
			},
		})

		admin, err := admins.RemoveFeatureForCoordinates(ctx, adminID, 10.5, 20.5)
		require.NoError(t, err)
		require.NotNil(t, admin.GeoJSON)
		require.Len(t, admin.GeoJSON.Features, 1)
		assert.Equal(t, 1.0, admin.GeoJSON.Features[0].Coordinates.Latitude)
	})

	t.Run("removes every coincident match", func(t *testing.T) {
		adminID := seedAdmin(t, db, &models.FeatureCollection{
			Type: "FeatureCollection",
			Features: []models.Feature{
				featureAt(10.5, 20.5),
				featureAt(10.5, 20.5),
				featureAt(10.5, 20.5),
				featureAt(3, 4),
			},
		})

		admin, err := admins.RemoveFeatureForCoordinates(ctx, adminID, 10.5, 20.5)
		require.NoError(t, err)
		require.Len(t, admin.GeoJSON.Features, 1)
	})

	t.Run("zero matches is a successful no-op", func(t *testing.T) {
		adminID := seedAdmin(t, db, &models.FeatureCollection{
			Type:     "FeatureCollection",
			Features: []models.Feature{featureAt(7, 8)},
		})

		admin, err := admins.RemoveFeatureForCoordinates(ctx, adminID, 99, 99)
		require.NoError(t, err)
		require.Len(t, admin.GeoJSON.Features, 1)
	})

	t.Run("latitude match alone is not enough", func(t *testing.T) {
		adminID := seedAdmin(t, db, &models.FeatureCollection{
			Type:     "FeatureCollection",
			Features: []models.Feature{featureAt(10.5, 20.5)},
		})

		admin, err := admins.RemoveFeatureForCoordinates(ctx, adminID, 10.5, 99)
		require.NoError(t, err)
		require.Len(t, admin.GeoJSON.Features, 1)
	})

	t.Run("admin without geojson is not found", func(t *testing.T) {
		adminID := seedAdmin(t, db, nil)

		_, err := admins.RemoveFeatureForCoordinates(ctx, adminID, 1, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown admin is not found", func(t *testing.T) {
		_, err := admins.RemoveFeatureForCoordinates(ctx, primitive.NewObjectID(), 1, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteCascade(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	serviceID, serviceTypeID := seedServices(t, db)
	locations := NewLocationRepository(db)
	admins := NewAdminRepository(db)

	adminID := seedAdmin(t, db, &models.FeatureCollection{
		Type: "FeatureCollection",
		Features: []models.Feature{
			featureAt(10.5, 20.5),
			featureAt(30, 40),
		},
	})

	created, err := locations.Create(ctx, LocationInput{
		ServiceName: serviceID,
		ServiceType: serviceTypeID,
		Coordinates: models.Coordinates{Latitude: 10.5, Longitude: 20.5},
	})
	require.NoError(t, err)

	deleted, err := locations.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.5, deleted.Coordinates.Latitude)

	admin, err := admins.RemoveFeatureForCoordinates(ctx, adminID,
		deleted.Coordinates.Latitude, deleted.Coordinates.Longitude)
	require.NoError(t, err)
	require.Len(t, admin.GeoJSON.Features, 1)
	assert.Equal(t, 30.0, admin.GeoJSON.Features[0].Coordinates.Latitude)

	_, err = locations.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGeoJSON(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	admins := NewAdminRepository(db)

	adminID := seedAdmin(t, db, nil)

	admin, err := admins.UpdateGeoJSON(ctx, adminID, &models.FeatureCollection{
		Type:     "FeatureCollection",
		Features: []models.Feature{featureAt(1, 2)},
	})
	require.NoError(t, err)
	require.NotNil(t, admin.GeoJSON)
	assert.Len(t, admin.GeoJSON.Features, 1)

	_, err = admins.UpdateGeoJSON(ctx, primitive.NewObjectID(), &models.FeatureCollection{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBootstrapIdempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	admins := NewAdminRepository(db)

	require.NoError(t, admins.Bootstrap(ctx))
	require.NoError(t, admins.Bootstrap(ctx))

	count, err := db.Collection(CollAdmins).CountDocuments(ctx, bson.M{"username": DefaultAdminUsername})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	admin, err := admins.FindByUsername(ctx, DefaultAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("admin123")))
}
