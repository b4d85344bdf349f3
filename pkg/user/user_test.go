package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventpulse/eventpulse/internal/memstore"
	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/eventpulse/eventpulse/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

func setupService() (*user.UserServiceImpl, *utils.MockClock) {
	clock := utils.NewMockClock(now)
	return user.NewUserService(memstore.New(), clock), clock
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns id, uid and creation time", func(t *testing.T) {
		service, _ := setupService()

		created, err := service.CreateUser(ctx, user.User{Id: 99, Name: "  Ada  ", Email: " Ada@Example.COM "})

		require.NoError(t, err)
		assert.Equal(t, 1, created.Id)
		_, err = uuid.Parse(created.Uid)
		assert.NoError(t, err)
		assert.Equal(t, "Ada", created.Name)
		assert.Equal(t, "ada@example.com", created.Email)
		assert.Equal(t, now, created.CreatedAt)

		byUid, err := service.GetUserByUid(ctx, created.Uid)
		require.NoError(t, err)
		assert.Equal(t, created, byUid)
	})

	t.Run("Email must be unique regardless of case", func(t *testing.T) {
		service, _ := setupService()
		_, err := service.CreateUser(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		_, err = service.CreateUser(ctx, user.User{Name: "Other Ada", Email: "ADA@example.com"})

		assert.ErrorIs(t, err, user.ErrEmailTaken)
	})

	t.Run("Lookup by email is normalized", func(t *testing.T) {
		service, _ := setupService()
		created, err := service.CreateUser(ctx, user.User{Name: "Ada", Email: "ada@example.com"})
		require.NoError(t, err)

		found, err := service.GetUserByEmail(ctx, " ADA@example.com")

		require.NoError(t, err)
		assert.Equal(t, created.Id, found.Id)
	})
}

func TestGetAllUsers_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	service, clock := setupService()

	first, err := service.CreateUser(ctx, user.User{Name: "First", Email: "first@example.com"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := service.CreateUser(ctx, user.User{Name: "Second", Email: "second@example.com"})
	require.NoError(t, err)

	users, err := service.GetAllUsers(ctx)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, first.Uid, users[0].Uid)
	assert.Equal(t, second.Uid, users[1].Uid)
}

func TestGetUser_NotFound(t *testing.T) {
	service, _ := setupService()

	_, err := service.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = service.GetUserByUid(context.Background(), "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func setupHandler() *mux.Router {
	service, _ := setupService()
	handler := user.NewHandler(service)

	r := mux.NewRouter()
	r.HandleFunc("/api/users", handler.GetUsers).Methods("GET")
	r.HandleFunc("/api/users", handler.CreateUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", handler.GetUser).Methods("GET")
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler(t *testing.T) {
	r := setupHandler()

	w := serve(r, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = serve(r, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Message string       `json:"message"`
		User    user.UserDTO `json:"user"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "User created successfully", created.Message)
	assert.Equal(t, 1, created.User.Id)

	w = serve(r, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched user.UserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
	assert.Equal(t, created.User.Uid, fetched.Uid)

	w = serve(r, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []user.UserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&all))
	assert.Len(t, all, 1)
}

func TestUserHandler_Errors(t *testing.T) {
	r := setupHandler()
	serve(r, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
		fields  []string
	}{
		{"invalid id", http.MethodGet, "/api/users/abc", "", http.StatusBadRequest, "Invalid user ID", nil},
		{"unknown id", http.MethodGet, "/api/users/5", "", http.StatusNotFound, "User not found", nil},
		{"id beyond int4", http.MethodGet, "/api/users/3000000000", "", http.StatusBadRequest, "Invalid user ID", nil},
		{"numeric name", http.MethodPost, "/api/users", `{"name":5,"email":"carl@example.com"}`, http.StatusBadRequest, "Invalid user data", []string{"name"}},
		{"malformed body", http.MethodPost, "/api/users", `{`, http.StatusBadRequest, "Invalid request body format", nil},
		{"missing fields", http.MethodPost, "/api/users", `{}`, http.StatusBadRequest, "Invalid user data", []string{"name", "email"}},
		{"bad email", http.MethodPost, "/api/users", `{"name":"Bob","email":"bob"}`, http.StatusBadRequest, "Invalid user data", []string{"email"}},
		{"email taken", http.MethodPost, "/api/users", `{"name":"Ada 2","email":"ADA@example.com"}`, http.StatusBadRequest, "Invalid user data", []string{"email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, w.Code)
			var errResponse rest.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
			assert.Equal(t, tt.message, errResponse.Error)
			fields := make([]string, 0)
			for _, d := range errResponse.Details {
				fields = append(fields, d.Field)
			}
			if tt.fields == nil {
				assert.Empty(t, fields)
			} else {
				assert.ElementsMatch(t, tt.fields, fields)
			}
		})
	}
}
