package auth_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/EngSenku/ensat/internal/auth"
	"github.com/EngSenku/ensat/internal/metrics"
	"github.com/EngSenku/ensat/internal/student"
	"github.com/EngSenku/ensat/internal/testdb"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// newTestRouter wires the handlers the way the app does: open auth
// endpoints plus a session-guarded group with logout and the roster.
func newTestRouter(t *testing.T, pgContainer *testdb.PostgresContainer) chi.Router {
	t.Helper()

	mockMetrics := metrics.NewMock()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	authRepo := auth.NewRepository(pgContainer.DB, mockMetrics)
	authService := auth.NewService(authRepo, 24*time.Hour)
	authHandler := auth.NewHandler(authService, logger, mockMetrics)

	studentRepo := student.NewRepository(pgContainer.DB, mockMetrics)
	studentService := student.NewService(studentRepo)
	studentHandler := student.NewHandler(studentService, logger, mockMetrics, nil)

	router := chi.NewRouter()
	authHandler.RegisterRoutes(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(authService, logger))
		authHandler.RegisterProtectedRoutes(r)
		studentHandler.RegisterRoutes(r)
	})

	return router
}

// newBrokenRouter wires the same surface over a closed database connection
// so every repository call fails.
func newBrokenRouter(t *testing.T, dsn string) chi.Router {
	t.Helper()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	require.NoError(t, db.Close())

	mockMetrics := metrics.NewMock()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	authRepo := auth.NewRepository(db, mockMetrics)
	authService := auth.NewService(authRepo, 24*time.Hour)
	authHandler := auth.NewHandler(authService, logger, mockMetrics)

	studentRepo := student.NewRepository(db, mockMetrics)
	studentService := student.NewService(studentRepo)
	studentHandler := student.NewHandler(studentService, logger, mockMetrics, nil)

	router := chi.NewRouter()
	authHandler.RegisterRoutes(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(authService, logger))
		authHandler.RegisterProtectedRoutes(r)
		studentHandler.RegisterRoutes(r)
	})

	return router
}

func doJSON(t *testing.T, router chi.Router, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router chi.Router, subjectID string) auth.AuthResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"displayName":       "Amal",
		"email":             "amal@ensat.ac.ma",
		"providerSubjectId": subjectID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp auth.AuthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.SessionToken)
	return resp
}

func TestAuthHandler_Shared(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t,
		(*auth.User)(nil),
		(*auth.Session)(nil),
		(*student.Student)(nil),
	)

	router := newTestRouter(t, pgContainer)

	t.Run("Login_Success", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "users", "sessions", "students")

		resp := login(t, router, "g-123")
		assert.Equal(t, "Amal", resp.User.Name)
		assert.Equal(t, "amal@ensat.ac.ma", resp.User.Email)
		assert.NotZero(t, resp.User.ID)
	})

	t.Run("Login_WithCredential", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "users", "sessions", "students")

		credential := signTestCredential(t, jwt.MapClaims{
			"sub":   "g-456",
			"email": "omar@ensat.ac.ma",
			"name":  "Omar",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		w := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{
			"credential": credential,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var resp auth.AuthResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Omar", resp.User.Name)
		assert.Equal(t, "omar@ensat.ac.ma", resp.User.Email)
	})

	t.Run("Login_MissingSubjectID", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{
			"displayName": "Nobody",
			"email":       "nobody@ensat.ac.ma",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Login_MalformedCredential", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]interface{}{
			"credential": "not-a-jwt",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ProtectedRoute_NoToken", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/students", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("ProtectedRoute_UnknownToken", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/students", "deadbeef", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Logout_RevokesSession", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "users", "sessions", "students")

		resp := login(t, router, "g-123")

		w := doJSON(t, router, http.MethodPost, "/auth/logout", resp.SessionToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		// Revoked token no longer reaches the roster
		w = doJSON(t, router, http.MethodGet, "/students", resp.SessionToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("LogoutAll_RevokesEverySessionOfUser", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "users", "sessions", "students")

		first := login(t, router, "g-123")
		second := login(t, router, "g-123")
		require.NotEqual(t, first.SessionToken, second.SessionToken)

		w := doJSON(t, router, http.MethodPost, "/auth/logout-all", first.SessionToken, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		// Both tokens are gone, including the one that made the call
		w = doJSON(t, router, http.MethodGet, "/students", first.SessionToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w = doJSON(t, router, http.MethodGet, "/students", second.SessionToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("StorageFailure_Returns500", func(t *testing.T) {
		broken := newBrokenRouter(t, pgContainer.DSN)

		// Login hits the user lookup first
		w := doJSON(t, broken, http.MethodPost, "/auth/login", "", map[string]interface{}{
			"displayName":       "Amal",
			"email":             "amal@ensat.ac.ma",
			"providerSubjectId": "g-123",
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

		// Session validation failure is a 500, not a 401
		w = doJSON(t, broken, http.MethodGet, "/students", "deadbeef", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	})

	// Full roster lifecycle through the HTTP surface: login, create,
	// list, update, delete, logout.
	t.Run("RosterLifecycle", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, "users", "sessions", "students")

		resp := login(t, router, "g-123")
		token := resp.SessionToken

		// Create
		w := doJSON(t, router, http.MethodPost, "/students", token, map[string]interface{}{
			"name":  "Omar",
			"email": "omar@ensat.ac.ma",
			"major": "GI",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		require.NotZero(t, created.ID)

		// List contains exactly the created row
		w = doJSON(t, router, http.MethodGet, "/students", token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var listed []student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		require.Len(t, listed, 1)
		assert.Equal(t, "Omar", listed[0].Name)

		// Update replaces all fields
		w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/students/%d", created.ID), token, map[string]interface{}{
			"name":  "Omar B.",
			"email": "omar@ensat.ac.ma",
			"major": "GI",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var updated student.Student
		require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
		assert.Equal(t, "Omar B.", updated.Name)

		// Delete then list is empty
		w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/students/%d", created.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/students", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		listed = nil
		require.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		assert.Empty(t, listed)

		// Logout closes the session for good
		w = doJSON(t, router, http.MethodPost, "/auth/logout", token, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, router, http.MethodGet, "/students", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
