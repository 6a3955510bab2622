package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmalog/elogbook-api/internal/policy"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, role string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id":  uint(1),
		"username": "tester",
		"role":     role,
		"exp":      time.Now().Add(expiry).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return token
}

func TestAuth_MissingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/logs", nil)

	Auth(testSecret)(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/logs", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "QA", -time.Hour))

	Auth(testSecret)(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidTokenSetsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/logs", nil)
	c.Request.Header.Set("Authorization", "Bearer "+signedToken(t, "QA", time.Hour))

	Auth(testSecret)(c)
	assert.False(t, c.IsAborted())
	assert.Equal(t, uint(1), GetUserID(c))
	assert.Equal(t, "QA", string(GetUserRole(c)))
}

func TestRequireOperation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		role     string
		expected int
	}{
		{"QA", http.StatusOK},
		{"Admin", http.StatusOK},
		{"Operator", http.StatusForbidden},
		{"NotARole", http.StatusForbidden},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest("POST", "/logs/1/approve", nil)
		c.Set("userRole", tt.role)

		RequireOperation(policy.OpCountersignEntry)(c)
		assert.Equal(t, tt.expected, w.Code, "role %s", tt.role)
	}
}
