package app

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"adbond/internal/config"
	"adbond/internal/database"
	"adbond/internal/domain"
	"adbond/internal/notification"
	"adbond/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type outbox struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (o *outbox) Send(_ context.Context, msg notification.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) to(addr string) []notification.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []notification.Message
	for _, m := range o.msgs {
		if m.To == addr {
			out = append(out, m)
		}
	}
	return out
}

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB
	mail   *outbox
}

const (
	adminEmail    = "admin@adbond.test"
	adminPassword = "admin-password-1"
)

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		AppEnv:                 "test",
		JWTSecret:              "test_secret_key_32_characters_min",
		JWTAccessTTL:           time.Hour,
		TempPasswordTTL:        24 * time.Hour,
		AdminNotificationEmail: "alerts@adbond.test",
		FrontendURL:            "https://app.adbond.test",
		MailDriver:             config.MailDriverLog,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &domain.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		FirstName:    "Admin",
	}))

	mail := &outbox{}
	return &E2ETestSuite{
		router: NewRouter(cfg, db, mail, nil),
		db:     db,
		mail:   mail,
	}
}

func (s *E2ETestSuite) makeRequest(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, &resp
}

func (s *E2ETestSuite) login(t *testing.T, email, password string) (*httptest.ResponseRecorder, *TestResponse) {
	t.Helper()
	return s.makeRequest(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, "")
}

func (s *E2ETestSuite) adminToken(t *testing.T) string {
	t.Helper()
	w, resp := s.login(t, adminEmail, adminPassword)
	require.Equal(t, http.StatusOK, w.Code)
	return resp.Data["token"].(string)
}

func (s *E2ETestSuite) register(t *testing.T, email string) string {
	t.Helper()
	w, resp := s.makeRequest(t, http.MethodPost, "/api/entities/register", gin.H{
		"entity_type":  "network",
		"name":         "Blue Ocean Network",
		"email":        email,
		"website":      "https://blueocean.example",
		"contact_info": gin.H{"telegram": "@blueocean"},
		"metadata": gin.H{
			"supported_models": []string{"CPA", "CPL"},
			"payment_terms":    "Net30",
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pending", resp.Data["verification_status"])
	return resp.Data["id"].(string)
}

var tempPasswordRe = regexp.MustCompile(`<code>([^<]+)</code>`)

func TestE2E_RegistrationToFirstLogin(t *testing.T) {
	s := setupTestSuite(t)
	admin := s.adminToken(t)

	entityID := s.register(t, "ops@blueocean.example")
	require.Len(t, s.mail.to("alerts@adbond.test"), 1, "admin alert on registration")
	assert.Empty(t, s.mail.to("ops@blueocean.example"), "registration never mails the entity")

	w, resp := s.makeRequest(t, http.MethodGet, "/api/entities/admin/pending-verification?page=1&limit=10", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Data["total"])

	w, resp = s.makeRequest(t, http.MethodPut, "/api/entities/"+entityID+"/verification",
		gin.H{"verification_status": "approved", "admin_notes": "verified by phone"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sideEffects := resp.Data["side_effects"].(map[string]interface{})
	assert.Equal(t, true, sideEffects["account_created"])
	assert.Equal(t, true, sideEffects["email_sent"])
	assert.Equal(t, "approved", resp.Data["entity"].(map[string]interface{})["verification_status"])

	welcome := s.mail.to("ops@blueocean.example")
	require.Len(t, welcome, 1)
	m := tempPasswordRe.FindStringSubmatch(welcome[0].HTML)
	require.Len(t, m, 2, "welcome mail carries the temporary password")
	tempPassword := html.UnescapeString(m[1])
	assert.Contains(t, welcome[0].HTML, "https://app.adbond.test/login")

	// second approval is a no-op for side effects
	w, resp = s.makeRequest(t, http.MethodPut, "/api/entities/"+entityID+"/verification",
		gin.H{"verification_status": "approved"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data["side_effects"].(map[string]interface{})["account_created"])
	assert.Len(t, s.mail.to("ops@blueocean.example"), 1)

	w, resp = s.login(t, "ops@blueocean.example", tempPassword)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, resp.Data["password_reset_required"])
	userToken := resp.Data["token"].(string)
	assert.Equal(t, "network", resp.Data["user"].(map[string]interface{})["role"])

	w, _ = s.makeRequest(t, http.MethodPut, "/api/entities/"+entityID+"/verification",
		gin.H{"verification_status": "rejected"}, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.makeRequest(t, http.MethodPost, "/api/auth/change-password",
		gin.H{"current_password": tempPassword, "new_password": "my-own-password"}, userToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = s.login(t, "ops@blueocean.example", "my-own-password")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data["password_reset_required"])

	w, resp = s.makeRequest(t, http.MethodGet, "/api/auth/me", nil, resp.Data["token"].(string))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entityID, resp.Data["entity_id"])
}

func TestE2E_ExpiredTemporaryPassword(t *testing.T) {
	s := setupTestSuite(t)
	admin := s.adminToken(t)

	entityID := s.register(t, "late@blueocean.example")
	w, _ := s.makeRequest(t, http.MethodPut, "/api/entities/"+entityID+"/verification",
		gin.H{"verification_status": "approved"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	welcome := s.mail.to("late@blueocean.example")
	require.Len(t, welcome, 1)
	tempPassword := html.UnescapeString(tempPasswordRe.FindStringSubmatch(welcome[0].HTML)[1])

	require.NoError(t, s.db.Exec(
		"UPDATE users SET temp_password_expires = ? WHERE entity_id = ?",
		time.Now().UTC().Add(-time.Minute), entityID,
	).Error)

	w, resp := s.login(t, "late@blueocean.example", tempPassword)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "TEMP_PASSWORD_EXPIRED", resp.Error.Code)

	w, resp = s.login(t, "late@blueocean.example", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)

	w, resp = s.makeRequest(t, http.MethodPost, "/api/entities/"+entityID+"/reissue-credentials", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, resp.Data["side_effects"].(map[string]interface{})["email_sent"])

	welcome = s.mail.to("late@blueocean.example")
	require.Len(t, welcome, 2)
	reissued := html.UnescapeString(tempPasswordRe.FindStringSubmatch(welcome[1].HTML)[1])

	w, resp = s.login(t, "late@blueocean.example", reissued)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, resp.Data["password_reset_required"])
}

func TestE2E_RegistrationValidation(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.makeRequest(t, http.MethodPost, "/api/entities/register", gin.H{
		"entity_type":  "advertiser",
		"name":         "Acme",
		"email":        "acme@example.com",
		"contact_info": gin.H{"phone": "+1 555 0100"},
		"metadata":     gin.H{"payout_types": []string{}},
	}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	raw, _ := json.Marshal(resp.Error.Details)
	assert.Contains(t, string(raw), "metadata.program_name")
	assert.Contains(t, string(raw), "metadata.payout_types")

	s.register(t, "dup@blueocean.example")
	w, resp = s.makeRequest(t, http.MethodPost, "/api/entities/register", gin.H{
		"entity_type":  "network",
		"name":         "Copycat",
		"email":        "DUP@blueocean.example",
		"contact_info": gin.H{"phone": "1"},
		"metadata":     gin.H{"supported_models": []string{"CPA"}, "payment_terms": "Net15"},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", resp.Error.Code)
}

func TestE2E_BulkVerification(t *testing.T) {
	s := setupTestSuite(t)
	admin := s.adminToken(t)

	a := s.register(t, "a@bulk.example")
	b := s.register(t, "b@bulk.example")

	w, resp := s.makeRequest(t, http.MethodPut, "/api/entities/admin/bulk-verification", gin.H{
		"entity_ids":          []string{a, b, "00000000-0000-0000-0000-000000000000"},
		"verification_status": "on_hold",
		"admin_notes":         "waiting for documents",
	}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, resp.Data["updated_entities"], 2)
	assert.Empty(t, s.mail.to("a@bulk.example"))

	w, resp = s.makeRequest(t, http.MethodPut, "/api/entities/admin/bulk-verification", gin.H{
		"entity_ids":          []string{a, b},
		"verification_status": "approved",
	}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	results := resp.Data["account_creation_results"].([]interface{})
	require.Len(t, results, 2)
	for _, r := range results {
		row := r.(map[string]interface{})
		assert.Equal(t, true, row["success"])
		assert.Equal(t, true, row["email_sent"])
	}

	w, resp = s.makeRequest(t, http.MethodPut, "/api/entities/admin/bulk-verification", gin.H{
		"entity_ids":          []string{},
		"verification_status": "approved",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestE2E_AdminEntityCRUD(t *testing.T) {
	s := setupTestSuite(t)
	admin := s.adminToken(t)
	id := s.register(t, "crud@blueocean.example")

	w, _ := s.makeRequest(t, http.MethodGet, "/api/entities/"+id, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := s.makeRequest(t, http.MethodPut, "/api/entities/"+id, gin.H{"description": "Top CPA network"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Top CPA network", resp.Data["description"])

	w, _ = s.makeRequest(t, http.MethodPut, "/api/entities/"+id+"/verification", gin.H{"verification_status": "approved"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = s.makeRequest(t, http.MethodPut, "/api/entities/"+id+"/verification", gin.H{"verification_status": "pending"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)

	w, _ = s.makeRequest(t, http.MethodDelete, "/api/entities/"+id, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	var users int64
	require.NoError(t, s.db.Table("users").Where("LOWER(email) = ?", strings.ToLower("crud@blueocean.example")).Count(&users).Error)
	assert.Zero(t, users, "linked user is removed with the entity")

	w, resp = s.makeRequest(t, http.MethodGet, "/api/entities/"+id, nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ENTITY_NOT_FOUND", resp.Error.Code)
}

func TestE2E_Health(t *testing.T) {
	s := setupTestSuite(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
