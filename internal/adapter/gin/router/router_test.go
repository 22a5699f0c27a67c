package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dynamo-user-service/internal/adapter/db/postgres"
	"dynamo-user-service/internal/adapter/gin/handler"
	"dynamo-user-service/internal/usecase/user"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	return setupRouterWithLogger(t, zaptest.NewLogger(t))
}

func setupRouterWithLogger(t testing.TB, log *zap.Logger) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	repo := postgres.NewUserRepoPG(db, log)
	require.NoError(t, repo.EnsureSchema(t.Context()))

	h := handler.NewUserHandler(user.New(repo, log), log)
	return SetupRouter(h, nil, "/user", log), db
}

func send(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) handler.UserResponse {
	t.Helper()
	var u handler.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func TestUserLifecycle(t *testing.T) {
	r, _ := setupRouter(t)

	w := send(t, r, http.MethodPost, "/user", `{"name":"A","email_address":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeUser(t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "A", created.Name)
	assert.Equal(t, "a@x.com", created.EmailAddress)

	w = send(t, r, http.MethodGet, "/user/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeUser(t, w))

	w = send(t, r, http.MethodPut, "/user/"+created.ID, `{"name":"B"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handler.UserResponse{ID: created.ID, Name: "B", EmailAddress: "a@x.com"}, decodeUser(t, w))

	w = send(t, r, http.MethodGet, "/user", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []handler.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = send(t, r, http.MethodDelete, "/user/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = send(t, r, http.MethodGet, "/user/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestCreateUser_DistinctIDs(t *testing.T) {
	r, _ := setupRouter(t)

	first := decodeUser(t, send(t, r, http.MethodPost, "/user", `{"name":"A","email_address":"a@x.com"}`))
	second := decodeUser(t, send(t, r, http.MethodPost, "/user", `{"name":"A","email_address":"a@x.com"}`))

	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetUser_Missing(t *testing.T) {
	r, _ := setupRouter(t)

	w := send(t, r, http.MethodGet, "/user/does-not-exist", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestUpdateUser_UnknownIDCreates(t *testing.T) {
	r, _ := setupRouter(t)

	w := send(t, r, http.MethodPut, "/user/fresh", `{"name":"C","email_address":"c@x.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = send(t, r, http.MethodGet, "/user/fresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handler.UserResponse{ID: "fresh", Name: "C", EmailAddress: "c@x.com"}, decodeUser(t, w))
}

func TestDeleteUser_Missing(t *testing.T) {
	r, _ := setupRouter(t)

	w := send(t, r, http.MethodDelete, "/user/does-not-exist", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStoreUnavailable(t *testing.T) {
	r, db := setupRouter(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/user/u1", ""},
		{http.MethodPost, "/user", `{"name":"A","email_address":"a@x.com"}`},
		{http.MethodPut, "/user/u1", `{"name":"B"}`},
		{http.MethodDelete, "/user/u1", ""},
		{http.MethodGet, "/user", ""},
	} {
		w := send(t, r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusInternalServerError, w.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"message":"Internal Server Error"}`, w.Body.String())
	}
}

func TestAuxiliaryRoutes(t *testing.T) {
	r, _ := setupRouter(t)

	w := send(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = send(t, r, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/user/{userID}")
}

func BenchmarkGetUser(b *testing.B) {
	r, _ := setupRouterWithLogger(b, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/user", bytes.NewReader([]byte(`{"name":"A","email_address":"a@x.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(b, http.StatusCreated, w.Code)

	var created handler.UserResponse
	require.NoError(b, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/user/" + created.ID

	for b.Loop() {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}
