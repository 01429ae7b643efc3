package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour

	maxIdempotencyKeyLen = 200
)

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first 2xx response stored for an Idempotency-Key.
// Keys are scoped to method and route. A request arriving while the first
// one is still running gets 409. Requests without the header pass through.
func Idempotency(repo repository.IdempotenciaRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}
		header := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if header == "" {
			c.Next()
			return
		}
		if len(header) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				apierror.Validacao("Idempotency-Key muito longo").Body(false))
			return
		}

		// Store calls outlive the request: a client that hangs up must not
		// leave the key reserved.
		ctx := context.WithoutCancel(c.Request.Context())
		chave := c.Request.Method + " " + c.FullPath() + "|" + header

		existing, err := repo.Buscar(ctx, chave)
		if err != nil {
			// store unavailable: process normally
			log.Warn().Err(err).Msg("idempotency: lookup failed")
			c.Next()
			return
		}
		if existing != nil {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.Status, existing.ContentType, existing.Corpo)
			c.Abort()
			return
		}

		ok, err := repo.Reservar(ctx, chave, IdempotencyKeyTTL)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency: reserve failed")
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict,
				apierror.Conflito("Requisição com esta Idempotency-Key ainda em processamento").Body(false))
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		concluido := false
		defer func() {
			// a panicking handler unwinds through here before Recovery answers
			if !concluido {
				liberar(ctx, repo, chave)
			}
		}()

		c.Next()
		concluido = true

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			liberar(ctx, repo, chave)
			return
		}
		k := &model.ChaveIdempotencia{
			Chave:       chave,
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			Corpo:       blw.body.Bytes(),
			ExpiraEm:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := repo.Salvar(ctx, k); err != nil {
			log.Warn().Err(err).Msg("idempotency: save failed")
		}
	}
}

func liberar(ctx context.Context, repo repository.IdempotenciaRepository, chave string) {
	if err := repo.Liberar(ctx, chave); err != nil {
		log.Warn().Err(err).Str("chave", chave).Msg("idempotency: release failed")
	}
}
