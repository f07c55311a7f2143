package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptoseven_backend/internal/config"
	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/util"
	"cryptoseven_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return cfg
}

func testToken(t *testing.T, role model.UserRole) string {
	t.Helper()
	token, err := util.GenerateJWT(&model.User{
		BaseModel: model.BaseModel{ID: 7},
		Email:     "alice@example.com",
		Role:      role,
	}, "unit-test-secret", time.Hour)
	require.NoError(t, err)
	return token
}

func newProtectedRouter(cfg *config.Config, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append(handlers, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID})
	})
	r.GET("/protected", chain...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newProtectedRouter(cfg, AuthMiddleware(cfg))

	// 无 token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造 token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 合法 token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, model.Noobies))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":7`)
}

func TestTryAuthMiddlewareAllowsGuests(t *testing.T) {
	cfg := testConfig()
	r := gin.New()
	r.GET("/open", TryAuthMiddleware(cfg), func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.JSON(http.StatusOK, gin.H{"guest": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": claims.UserID})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "guest")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, model.Noobies))
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"userId":7`)
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	r := newProtectedRouter(cfg, AuthMiddleware(cfg), RoleMiddleware(model.Admin))

	// 普通用户进不了管理接口
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, model.Hacker))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, model.Admin))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
