package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"ok": true})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(CodeSuccess), body["code"])
	assert.Equal(t, map[string]interface{}{"ok": true}, body["data"])
}

func TestBusinessError_OmitsData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	BusinessError(c, CodeInsufficientAllowance, "额度不足")

	body := decode(t, w)
	assert.Equal(t, float64(CodeInsufficientAllowance), body["code"])
	assert.Equal(t, "额度不足", body["message"])
	_, hasData := body["data"]
	assert.False(t, hasData)
}

func TestUnauthorized_Aborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Unauthorized(c, "missing caller")

	assert.True(t, c.IsAborted())
	assert.Equal(t, float64(CodeUnauthorized), decode(t, w)["code"])
}
