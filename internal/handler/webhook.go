package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/service"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds a single Cardápio.ai order payload.
const maxWebhookBody = 1 << 20

const webhookOK = "Webhook Cardápio.ai está funcionando!"

type WebhookHandler struct{ svc service.VendaService }

func NewWebhookHandler(svc service.VendaService) *WebhookHandler { return &WebhookHandler{svc: svc} }

// Receber godoc
// @Summary Recebe um pedido do Cardápio.ai
// @Description Aceita o formato estruturado e o formato legado; o pedido é registrado no caixa aberto.
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-Webhook-Token header string false "Token compartilhado"
// @Param Idempotency-Key header string false "Chave de idempotência"
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} apierror.Response
// @Router /api/webhook/cardapio-ai [post]
func (h *WebhookHandler) Receber(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, apierror.Validacao("Payload excede o tamanho máximo"))
			return
		}
		respondError(c, apierror.Validacao("Não foi possível ler o corpo da requisição"))
		return
	}

	resp, err := h.svc.IngerirPedido(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary Verifica o webhook; ?test=data retorna um payload de exemplo
// @Tags webhook
// @Produce json
// @Param test query string false "Use 'data' para obter o exemplo"
// @Success 200 {object} map[string]interface{}
// @Router /api/webhook/cardapio-ai [get]
func (h *WebhookHandler) Status(c *gin.Context) {
	agora := time.Now().UTC().Format(time.RFC3339)
	if c.Query("test") == "data" {
		c.JSON(http.StatusOK, gin.H{
			"message":              webhookOK,
			"timestamp":            agora,
			"exemplo_novo_formato": exemploPedido,
			"instrucoes":           "Envie um POST com os dados do pedido no formato acima",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   webhookOK,
		"timestamp": agora,
		"endpoints": gin.H{
			"GET ?test=data": "Retorna exemplo da nova estrutura",
			"POST /":         "Recebe webhook do Cardápio.ai",
		},
	})
}

var exemploPedido = gin.H{
	"nomeCliente":     "Guilherme",
	"telefoneCliente": "(81) 98867 0268",
	"tipoPedido":      "Pedido Delivery",
	"endereco":        "Rua Veneza, 97 - Centro, Paulista - CEP",
	"dataCompra":      "09/11/2025",
	"valorCompra":     40,
	"tipoPagamento":   "Pix",
	"produtos": []gin.H{{
		"nome":       "Eco: Carne Guisada",
		"quantidade": "1",
		"valor":      15,
		"adicionais": []gin.H{{"nome": "Macassar", "quantidade": 1, "valor": 0}},
	}},
}
