package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockAuth0Server(t *testing.T, infoByToken map[string]*Auth0UserInfo) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			http.NotFound(w, r)
			return
		}
		token := r.Header.Get("Authorization")
		info, ok := infoByToken[token[len("Bearer "):]]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAuth0Service_GetUserInfo(t *testing.T) {
	server := setupMockAuth0Server(t, map[string]*Auth0UserInfo{
		"good-token": {Sub: "auth0|1", Email: "a@example.com", Name: "Ada"},
	})
	svc := NewAuth0Service(server.URL)

	info, err := svc.GetUserInfo(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", info.Email)

	_, err = svc.GetUserInfo(context.Background(), "bad-token")
	assert.Error(t, err)
}

func TestCustomerService_CreatesFromClaims(t *testing.T) {
	db := setupServicesTestDB(t)
	svc := NewCustomerService(db, nil)

	user, err := svc.Resolve(context.Background(), Identity{Subject: "auth0|abc", Email: "kim@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "kim@example.com", user.Email)
	assert.Equal(t, "kim", user.Name)

	again, err := svc.Resolve(context.Background(), Identity{Subject: "auth0|abc"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCustomerService_FallsBackToUserInfo(t *testing.T) {
	db := setupServicesTestDB(t)
	server := setupMockAuth0Server(t, map[string]*Auth0UserInfo{
		"tok": {Sub: "auth0|xyz", Email: "lee@example.com", Name: "Lee Park"},
	})
	svc := NewCustomerService(db, NewAuth0Service(server.URL))

	user, err := svc.Resolve(context.Background(), Identity{Subject: "auth0|xyz", AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "lee@example.com", user.Email)
	assert.Equal(t, "Lee Park", user.Name)
}

func TestCustomerService_BackfillsMissingEmail(t *testing.T) {
	db := setupServicesTestDB(t)
	require.NoError(t, db.Create(&models.User{Auth0ID: "auth0|old", Name: "Old"}).Error)
	svc := NewCustomerService(db, nil)

	user, err := svc.Resolve(context.Background(), Identity{Subject: "auth0|old", Email: "old@example.com"})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "old@example.com", reloaded.Email)
}

func TestCustomerService_UserInfoFailureLeavesEmailEmpty(t *testing.T) {
	db := setupServicesTestDB(t)
	server := setupMockAuth0Server(t, map[string]*Auth0UserInfo{})
	svc := NewCustomerService(db, NewAuth0Service(server.URL))

	user, err := svc.Resolve(context.Background(), Identity{Subject: "auth0|nomail", AccessToken: "unknown"})
	require.NoError(t, err)
	assert.Empty(t, user.Email)
	assert.Equal(t, "auth0|nomail", user.Name)
}

func TestCustomerService_RequiresSubject(t *testing.T) {
	svc := NewCustomerService(setupServicesTestDB(t), nil)

	_, err := svc.Resolve(context.Background(), Identity{})
	assert.Error(t, err)
}
