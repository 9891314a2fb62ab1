package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, e *Err) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RenderErr(ctx, e)

	body := map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec, body
}

func TestRenderErr_ClientError(t *testing.T) {
	rec, body := render(t, ErrNotFound("challenge", "id", "42"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", body["status_text"])
	assert.Equal(t, "challenge with id 42 not found", body["error_text"])
}

func TestRenderErr_ServerErrorHidesDetail(t *testing.T) {
	rec, body := render(t, ErrInternalServerError(errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body["status_text"])
	assert.NotContains(t, body, "error_text")
}
