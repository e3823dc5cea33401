package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, *Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, &body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NotFound("patient", nil), http.StatusNotFound},
		{apperrors.BadRequest("end date must be after start date", nil), http.StatusBadRequest},
		{apperrors.Unauthorized(errors.New("token has been revoked")), http.StatusUnauthorized},
		{apperrors.AuthenticationFailure("invalid username or password"), http.StatusUnauthorized},
		{apperrors.Forbidden("insufficient role"), http.StatusForbidden},
		{apperrors.InvalidTransition("bill is already paid"), http.StatusConflict},
		{apperrors.ScheduleConflict("doctor is not available on the requested date"), http.StatusConflict},
		{apperrors.AlreadyTaken("username is already taken"), http.StatusConflict},
		{apperrors.Internal(errors.New("pq: connection refused")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w, body := respond(t, tc.err)
		assert.Equal(t, tc.status, w.Code, "error: %v", tc.err)
		assert.Equal(t, "error", body.Status)
	}
}

func TestRespondErrorHidesInternals(t *testing.T) {
	_, body := respond(t, apperrors.Internal(errors.New("pq: password authentication failed")))
	assert.Equal(t, "internal server error", body.Message)
}

func TestRespondErrorKeepsDomainMessage(t *testing.T) {
	_, body := respond(t, apperrors.AlreadyTaken("username is already taken"))
	assert.Equal(t, "username is already taken", body.Message)
}

func TestIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := IDParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := IDParam(c, "id")
		assert.False(t, ok, "value %q", raw)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
