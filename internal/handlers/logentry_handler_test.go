package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pharmalog/elogbook-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err      error
		expected int
	}{
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrInvalidState, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", services.ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondServiceError(c, tt.err)
		assert.Equal(t, tt.expected, w.Code, "error %v", tt.err)
	}
}

func TestSignatureRequest_PasswordAndReasonRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		payload     map[string]interface{}
		expectError bool
	}{
		{
			name:    "password and reason",
			payload: map[string]interface{}{"password": "s3cret", "reason": "shift done"},
		},
		{
			name:        "password only",
			payload:     map[string]interface{}{"password": "s3cret"},
			expectError: true,
		},
		{
			name:        "reason only",
			payload:     map[string]interface{}{"reason": "shift done"},
			expectError: true,
		},
		{
			name:        "empty body",
			payload:     map[string]interface{}{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			jsonBytes, _ := json.Marshal(tt.payload)
			c.Request, _ = http.NewRequest("POST", "/logs/1/submit", bytes.NewBuffer(jsonBytes))
			c.Request.Header.Set("Content-Type", "application/json")

			var req SignatureRequest
			err := c.ShouldBindJSON(&req)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
