package common

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
	"go.uber.org/zap/zapcore"
)

func TestCustomErrorWrap(t *testing.T) {
	cause := errors.New("end before start")
	err := ErrInvalidDateRange.Wrap(cause)

	assert.Equal(t, ErrCodeInvalidDateRange, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "end before start", err.Error())
	assert.Nil(t, ErrInvalidDateRange.Err)

	assert.Equal(t, ErrorResponse{Code: ErrCodeInvalidDateRange, Message: "無效的日期範圍"}, err.Response(false))
	assert.Equal(t, "end before start", err.Response(true).Details)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{ErrNotFound.Wrap(errors.New("recipe r1")), http.StatusNotFound, ErrCodeNotFound},
		{fmt.Errorf("schedule: %w", ErrStoreError.Wrap(errors.New("down"))), http.StatusServiceUnavailable, ErrCodeStoreError},
		{errors.New("unexpected"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, tt.err)

		assert.Equal(t, tt.status, w.Code)
		assert.True(t, c.IsAborted())
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tt.code, resp.Code)
		assert.Empty(t, resp.Details)
	}
}

func TestParseJSONBytes(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSONBytes([]byte(`{"name":"flour","extra":1}`), &v))
	assert.Equal(t, "flour", v.Name)

	assert.Error(t, ParseJSONBytesStrict([]byte(`{"name":"flour","extra":1}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"name":"flour"} {"name":"sugar"}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(`{"name":`), &v))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestLoggingBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		LogInfo("not initialised")
		LogWarn("still fine")
		LogCacheHit("shopping_list", "k")
	})
}
