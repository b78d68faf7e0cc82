package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	notFound := NewNotFoundError("Task not found")

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error passes through", notFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped app error", fmt.Errorf("load: %w", notFound), http.StatusNotFound, ErrCodeNotFound},
		{"duplicate key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), http.StatusConflict, ErrCodeConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, http.StatusBadRequest, ErrCodeInvalidRef},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"invalid transaction", gorm.ErrInvalidTransaction, http.StatusInternalServerError, ErrCodeDatabase},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestWrap_KeepsSentinelIdentity(t *testing.T) {
	sentinel := NewAuthError(ErrCodeTokenInvalid, "Invalid token")
	cause := errors.New("signature is invalid")

	err := sentinel.Wrap(cause)

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, cause, appErr.Err)
	assert.Nil(t, sentinel.Err, "sentinel must not be mutated")
}

func TestRespond_HidesInternalsOutsideDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, debug := range []bool{false, true} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		Respond(c, errors.New("dial tcp: connection refused"), debug)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, ErrCodeInternalError, body.Code)
		assert.Equal(t, "Internal server error", body.Message)
		if debug {
			assert.Contains(t, body.Debug, "connection refused")
		} else {
			assert.Empty(t, body.Debug)
		}
	}
}

func TestNewValidationError_Details(t *testing.T) {
	err := NewValidationError("", FieldError{Field: "title", Message: "title is required"})

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Validation failed", err.Message)
	assert.Equal(t, []FieldError{{Field: "title", Message: "title is required"}}, err.Details)
}
