package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/MUOBSocial/MUOB-creators/internal/middleware"
	"github.com/MUOBSocial/MUOB-creators/internal/model"
	"github.com/MUOBSocial/MUOB-creators/internal/store"
	"github.com/MUOBSocial/MUOB-creators/internal/tally"
	"github.com/MUOBSocial/MUOB-creators/pkg/config"
	"github.com/MUOBSocial/MUOB-creators/pkg/jwtutil"
)

type testEnv struct {
	e     *echo.Echo
	store *store.Store
	jwt   *jwtutil.JWTUtil
	db    *gorm.DB
}

// newTestEnv wires the full route table against an in-memory database and the
// given Tally base URL.
func newTestEnv(t *testing.T, tallyURL string) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Admin{}, &model.Brief{}, &model.Application{}))

	dataStore := store.New(db)
	jwtUtil := jwtutil.NewJWTUtil(&config.JWTConfig{
		SigningKey:      "test-signing-key",
		ExpirationHours: 1,
	})
	tallyClient := tally.NewClient(tallyURL, "test-key")

	authHandler := NewAuthHandler(dataStore, jwtUtil)
	briefHandler := NewBriefHandler(dataStore, tallyClient)
	applicationHandler := NewApplicationHandler(dataStore)
	userHandler := NewUserHandler(dataStore, jwtUtil)
	webhookHandler := NewWebhookHandler(dataStore)
	statsHandler := NewStatsHandler(dataStore)

	e := echo.New()
	e.GET("/health", HealthCheck)

	api := e.Group("/api")
	api.POST("/admin/login", authHandler.AdminLogin)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(jwtUtil))
	admin.GET("/tally/forms", briefHandler.ListTallyForms)
	admin.POST("/briefs", briefHandler.CreateBrief)
	admin.GET("/briefs", briefHandler.ListBriefs)
	admin.PUT("/brief/:id/status", briefHandler.UpdateBriefStatus)
	admin.GET("/applications", applicationHandler.ListApplications)
	admin.PUT("/application/:id", applicationHandler.UpdateApplication)
	admin.POST("/applications/bulk-update", applicationHandler.BulkUpdate)
	admin.GET("/stats", statsHandler.GetStats)

	api.POST("/user/login", userHandler.Login)
	api.GET("/user/applications", userHandler.Applications, middleware.RequireUser(jwtUtil))

	api.POST("/webhook/tally", webhookHandler.HandleTally)

	return &testEnv{e: e, store: dataStore, jwt: jwtUtil, db: db}
}

func (env *testEnv) seedAdmin(t *testing.T, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, env.store.SeedAdmin(username, string(hash)))
}

func (env *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := env.jwt.GenerateAdminToken(1, "admin")
	require.NoError(t, err)
	return token
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (env *testEnv) applicationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&model.Application{}).Count(&count).Error)
	return count
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t, "http://tally.invalid")

	rec := env.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", decodeBody(t, rec)["status"])
}
