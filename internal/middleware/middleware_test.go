package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/repository"
	"github.com/silvioaquino/Gestao-PDV/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segredo = "segredo-de-teste"

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, rol string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "7d1c8f3e-5a7b-4c2d-9e1f-0a1b2c3d4e5f",
		"username": "maria",
		"rol":      rol,
		"exp":      exp.Unix(),
	})
	s, err := tok.SignedString([]byte(segredo))
	require.NoError(t, err)
	return s
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := do(r, http.MethodGet, "/", "", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	w = do(r, http.MethodGet, "/", "", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestJWTAuthERequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/gerente", JWTAuth(segredo), RequireRole("gerente", "administrador"), func(c *gin.Context) {
		require.NotNil(t, UsuarioID(c))
		c.String(http.StatusOK, GetClaims(c).Username)
	})

	w := do(r, http.MethodGet, "/gerente", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "NAO_AUTORIZADO")

	w = do(r, http.MethodGet, "/gerente", "", map[string]string{"Authorization": "Bearer lixo"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expirado := token(t, "gerente", time.Now().Add(-time.Minute))
	w = do(r, http.MethodGet, "/gerente", "", map[string]string{"Authorization": "Bearer " + expirado})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	operador := token(t, "operador", time.Now().Add(time.Hour))
	w = do(r, http.MethodGet, "/gerente", "", map[string]string{"Authorization": "Bearer " + operador})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PROIBIDO")

	gerente := token(t, "gerente", time.Now().Add(time.Hour))
	w = do(r, http.MethodGet, "/gerente", "", map[string]string{"Authorization": "Bearer " + gerente})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "maria", w.Body.String())
}

func TestRequireRole_SemJWT(t *testing.T) {
	r := gin.New()
	r.GET("/", RequireRole("operador"), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/", "", nil).Code)
}

func TestWebhookToken(t *testing.T) {
	r := gin.New()
	r.POST("/aberto", WebhookToken(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/fechado", WebhookToken("s3nha"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/aberto", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/fechado", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(r, http.MethodPost, "/fechado", "", map[string]string{WebhookTokenHeader: "errado"}).Code)
	assert.Equal(t, http.StatusOK,
		do(r, http.MethodPost, "/fechado", "", map[string]string{WebhookTokenHeader: "s3nha"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/fechado?token=s3nha", "", nil).Code)
}

func TestIPRateLimiter(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)
	rl := NewIPRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2}, stop)

	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "", nil).Code)
	w := do(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "MUITAS_REQUISICOES")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestIPRateLimiter_Cleanup(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)
	rl := NewIPRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, EntryTTL: time.Nanosecond}, stop)
	rl.getLimiter("10.0.0.1")
	time.Sleep(time.Millisecond)
	assert.Equal(t, 1, rl.cleanup())
}

func TestIdempotency(t *testing.T) {
	repo := repository.NewIdempotenciaRepository(testutil.NovoBanco(t))
	var chamadas atomic.Int32

	r := gin.New()
	r.POST("/webhook", Idempotency(repo), func(c *gin.Context) {
		n := chamadas.Add(1)
		if c.Query("falha") == "1" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "n": n})
	})

	h := map[string]string{IdempotencyKeyHeader: "pedido-42"}
	first := do(r, http.MethodPost, "/webhook", `{}`, h)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Replayed"))

	replay := do(r, http.MethodPost, "/webhook", `{}`, h)
	assert.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())
	assert.Equal(t, int32(1), chamadas.Load())

	// without the header every request runs
	do(r, http.MethodPost, "/webhook", `{}`, nil)
	assert.Equal(t, int32(2), chamadas.Load())

	// failures are not stored
	f := map[string]string{IdempotencyKeyHeader: "pedido-43"}
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/webhook?falha=1", `{}`, f).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/webhook", `{}`, f).Code)
	assert.Equal(t, int32(4), chamadas.Load())
}

func TestIdempotency_PanicLiberaChave(t *testing.T) {
	repo := repository.NewIdempotenciaRepository(testutil.NovoBanco(t))
	var chamadas atomic.Int32

	r := gin.New()
	r.Use(Recovery())
	r.POST("/webhook", Idempotency(repo), func(c *gin.Context) {
		if chamadas.Add(1) == 1 {
			panic("falha no primeiro envio")
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	h := map[string]string{IdempotencyKeyHeader: "pedido-50"}
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodPost, "/webhook", `{}`, h).Code)

	retry := do(r, http.MethodPost, "/webhook", `{}`, h)
	assert.Equal(t, http.StatusOK, retry.Code)
	assert.Empty(t, retry.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, int32(2), chamadas.Load())
}

func TestIdempotency_ClienteDesconectado(t *testing.T) {
	repo := repository.NewIdempotenciaRepository(testutil.NovoBanco(t))
	var chamadas atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.POST("/webhook", Idempotency(repo), func(c *gin.Context) {
		chamadas.Add(1)
		cancel()
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`)).WithContext(ctx)
	req.Header.Set(IdempotencyKeyHeader, "pedido-51")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// the response was stored even though the request context was cancelled
	replay := do(r, http.MethodPost, "/webhook", `{}`, map[string]string{IdempotencyKeyHeader: "pedido-51"})
	assert.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, int32(1), chamadas.Load())
}

func TestIdempotency_EmProcessamento(t *testing.T) {
	repo := repository.NewIdempotenciaRepository(testutil.NovoBanco(t))
	r := gin.New()
	r.POST("/webhook", Idempotency(repo), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	ok, err := repo.Reservar(context.Background(), "POST /webhook|pedido-52", IdempotencyKeyTTL)
	require.NoError(t, err)
	require.True(t, ok)

	w := do(r, http.MethodPost, "/webhook", `{}`, map[string]string{IdempotencyKeyHeader: "pedido-52"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"CONFLITO"`)
}

func TestRecoveryEErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/erro", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	w := do(r, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "ERRO_INTERNO")

	w = do(r, http.MethodGet, "/erro", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
