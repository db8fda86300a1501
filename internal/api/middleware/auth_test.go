package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paxiitdevteam/retentionos/internal/pkg/jwt"
	"github.com/paxiitdevteam/retentionos/internal/pkg/response"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter() *gin.Engine {
	router := gin.New()
	router.GET("/protected", Auth(testSecret), func(c *gin.Context) {
		accountID, _ := GetAccountID(c)
		response.Success(c, gin.H{"account_id": accountID})
	})
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func parseCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestAuth_ValidToken(t *testing.T) {
	token, err := jwt.GenerateToken(42, testSecret, 1)
	require.NoError(t, err)

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, response.CodeSuccess, parseCode(t, w))
}

func TestAuth_MissingHeader(t *testing.T) {
	w := doRequest(authRouter(), "")
	assert.Equal(t, response.CodeAuthFailed, parseCode(t, w))
}

func TestAuth_MalformedHeader(t *testing.T) {
	token, _ := jwt.GenerateToken(42, testSecret, 1)

	w := doRequest(authRouter(), token) // no Bearer prefix
	assert.Equal(t, response.CodeAuthFailed, parseCode(t, w))
}

func TestAuth_WrongSecret(t *testing.T) {
	token, err := jwt.GenerateToken(42, "another-secret", 1)
	require.NoError(t, err)

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, response.CodeAuthFailed, parseCode(t, w))
}

func TestAuth_GarbageToken(t *testing.T) {
	w := doRequest(authRouter(), "Bearer not.a.token")
	assert.Equal(t, response.CodeAuthFailed, parseCode(t, w))
}

func TestGetAccountID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetAccountID(c)
	assert.False(t, ok)
}
