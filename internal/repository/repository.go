// Package repository holds the data-access layer. Methods return raw gorm
// errors; services translate them. Methods taking a tx run on it when it is
// non-nil so callers can compose them inside one transaction.
package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filtro narrows the list endpoints. A nil CaixaID lists every session.
type Filtro struct {
	CaixaID *uuid.UUID
	Limit   int
}

func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func (f Filtro) aplicar(q *gorm.DB) *gorm.DB {
	if f.CaixaID != nil {
		q = q.Where("caixa_abertura_id = ?", *f.CaixaID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}
