package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fila receives the background jobs triggered by service operations.
// A nil Fila disables them.
type Fila interface {
	EnqueueImpressao(ctx context.Context, caixaID uuid.UUID) error
	EnqueueRelatorio(ctx context.Context, caixaID uuid.UUID, destinatario string) error
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// traduzir maps a repository error onto the API taxonomy. recurso names the
// entity for NotFound messages; op names the operation for storage errors.
func traduzir(op, recurso string, err error) error {
	var apiErr *apierror.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NaoEncontrado(recurso)
	default:
		return apierror.Armazenamento(op, err)
	}
}

// parseID validates an optional session id from a request body.
func parseID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apierror.Validacao("caixa_abertura_id inválido")
	}
	return &id, nil
}

// texto trims s and maps blank to nil.
func texto(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func formatar(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func relogio() time.Time { return time.Now().UTC() }
