package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

const pedido = `{
	"nomeCliente": "Guilherme",
	"telefoneCliente": "(81) 98867 0268",
	"tipoPedido": "Pedido Delivery",
	"valorCompra": 40,
	"tipoPagamento": "pix",
	"produtos": [{"nome": "Carne Guisada", "quantidade": 1, "valor": 40}]
}`

func novoConfig(auth bool) *config.Config {
	return &config.Config{
		Env:                "test",
		Timezone:           "America/Sao_Paulo",
		AuthEnabled:        auth,
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		WebhookToken:       "tok-cardapio",
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		PrinterWidth:       48,
		RestauranteNome:    "Cantinho do Sabor",
	}
}

type app struct {
	engine   http.Handler
	services *Services
}

func novoApp(t *testing.T, auth bool) *app {
	t.Helper()
	cfg := novoConfig(auth)
	db := testutil.NovoBanco(t)
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })

	svc := NewServices(cfg, db, nil)
	return &app{
		engine:   New(cfg, db, nil, Deps{Services: svc, Stop: stop}),
		services: svc,
	}
}

func (a *app) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) login(t *testing.T, username, senha, rol string) string {
	t.Helper()
	_, err := a.services.Auth.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: username, Nome: "Operador Teste", Password: senha, Rol: rol,
	})
	require.NoError(t, err)

	w := a.do(http.MethodPost, "/api/auth/login", `{"username": "`+username+`", "password": "`+senha+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func bearer(tok string) map[string]string { return map[string]string{"Authorization": "Bearer " + tok} }

func TestRouter_Health(t *testing.T) {
	a := novoApp(t, true)
	w := a.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"printer":"disabled"`)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
}

func TestRouter_AutenticacaoEPapeis(t *testing.T) {
	a := novoApp(t, true)

	w := a.do(http.MethodGet, "/api/caixa/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	operador := a.login(t, "ana", "senha-forte-1", "operador")
	w = a.do(http.MethodGet, "/api/caixa/status", "", bearer(operador))
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/usuarios", "", bearer(operador))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(http.MethodGet, "/api/caixa/historico", "", bearer(operador))
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := a.login(t, "root", "senha-forte-2", "administrador")
	w = a.do(http.MethodGet, "/api/usuarios", "", bearer(admin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"ana"`)

	w = a.do(http.MethodPost, "/api/auth/login", `{"username": "ana", "password": "errada"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AberturaRegistraOperador(t *testing.T) {
	a := novoApp(t, true)
	tok := a.login(t, "ana", "senha-forte-1", "operador")

	w := a.do(http.MethodPost, "/api/caixa/abrir", `{"valor_inicial": 100}`, bearer(tok))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data dto.SessaoCaixaResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.UsuarioID)
}

func TestRouter_SemAutenticacao(t *testing.T) {
	a := novoApp(t, false)
	w := a.do(http.MethodPost, "/api/caixa/abrir", `{"valor_inicial": 0}`, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w = a.do(http.MethodGet, "/api/usuarios", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WebhookTokenEIdempotencia(t *testing.T) {
	a := novoApp(t, true)
	tok := a.login(t, "ana", "senha-forte-1", "operador")
	w := a.do(http.MethodPost, "/api/caixa/abrir", `{"valor_inicial": 0}`, bearer(tok))
	require.Equal(t, http.StatusCreated, w.Code)

	// public liveness check
	w = a.do(http.MethodGet, "/api/webhook/cardapio-ai", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/webhook/cardapio-ai", pedido, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	headers := map[string]string{"X-Webhook-Token": "tok-cardapio", "Idempotency-Key": "pedido-123"}
	first := a.do(http.MethodPost, "/api/webhook/cardapio-ai", pedido, headers)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := a.do(http.MethodPost, "/api/webhook/cardapio-ai", pedido, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w = a.do(http.MethodPost, "/api/webhook/cardapio-ai?token=tok-cardapio", pedido, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/api/vendas", "", bearer(tok))
	require.Equal(t, http.StatusOK, w.Code)
	var lista struct {
		Data []dto.VendaResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lista))
	assert.Len(t, lista.Data, 2)
}

func TestRouter_ImprimirSemImpressora(t *testing.T) {
	a := novoApp(t, false)
	w := a.do(http.MethodPost, "/api/caixa/abrir", `{"valor_inicial": 0}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Data dto.SessaoCaixaResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = a.do(http.MethodPost, "/api/caixa/"+resp.Data.ID+"/imprimir", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Nenhuma impressora configurada")
}
