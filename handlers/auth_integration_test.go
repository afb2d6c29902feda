package handlers

// Login tests that need a real MongoDB; gated on TEST_MONGO_URI like the
// repository integration tests.

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fazilniyaz/cable-net-complete-backend/models"
	"github.com/Fazilniyaz/cable-net-complete-backend/repository"
)

func loginTestDB(t *testing.T) *mongo.Database {
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

	db := client.Database(fmt.Sprintf("cablenet_auth_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func TestLoginFailureIsGeneric(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := loginTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	_, err = db.Collection(repository.CollAdmins).InsertOne(context.Background(), models.Admin{
		Username:  "admin",
		Password:  string(hash),
		Role:      "admin",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	handler := NewAuthHandler(repository.NewAdminRepository(db))

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		return rec
	}

	wrongPassword := post(`{"username": "admin", "password": "wrong"}`)
	unknownUser := post(`{"username": "nobody", "password": "wrong"}`)

	assert.Equal(t, 401, wrongPassword.Code)
	assert.Equal(t, 401, unknownUser.Code)
	// The two failure modes must be indistinguishable by content
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestLoginSuccessReturnsTokenAndProfile(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := loginTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	_, err = db.Collection(repository.CollAdmins).InsertOne(context.Background(), models.Admin{
		Username:  "admin",
		Password:  string(hash),
		Role:      "admin",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	handler := NewAuthHandler(repository.NewAdminRepository(db))

	req := httptest.NewRequest("POST", "/api/v1/auth/login",
		strings.NewReader(`{"username": "admin", "password": "correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"token"`)
	assert.Contains(t, body, `"username":"admin"`)
	// Password hash must never appear in a response
	assert.NotContains(t, body, string(hash))
}
