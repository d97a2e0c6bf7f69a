package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespondWithDomainError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)

	// Domain errors keep their message.
	rec := httptest.NewRecorder()
	RespondWithDomainError(rec, logger, fmt.Errorf("already enrolled with this instructor: %w", ErrConflict))
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "already enrolled")
	assert.Equal(t, 0, logs.Len())

	// Raw store failures are logged and replaced with a generic body.
	rec = httptest.NewRecorder()
	RespondWithDomainError(rec, logger, fmt.Errorf("pgUserRepository.List: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrInternalServer.Error(), body.Error)
	assert.NotContains(t, body.Error, "connection refused")
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, fmt.Sprint(logs.All()[0].ContextMap()["error"]), "connection refused")
}
