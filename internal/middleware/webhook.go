package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"

	"github.com/gin-gonic/gin"
)

const WebhookTokenHeader = "X-Webhook-Token"

// WebhookToken requires the shared secret in X-Webhook-Token or ?token=.
// An empty token leaves the route public.
func WebhookToken(token string) gin.HandlerFunc {
	esperado := []byte(token)
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		recebido := c.GetHeader(WebhookTokenHeader)
		if recebido == "" {
			recebido = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(recebido), esperado) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.New(apierror.CodigoNaoAutorizado, "Token do webhook inválido"))
			return
		}
		c.Next()
	}
}
