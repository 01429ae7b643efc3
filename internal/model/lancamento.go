package model

import (
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendaManual is a total re-entered by staff for one payment method, used to
// cross-check the system sales.
type VendaManual struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CaixaAberturaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	TipoPagamento   pagamento.Tipo  `gorm:"type:varchar(20);not null"`
	Valor           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descricao       *string
	DataVenda       time.Time `gorm:"not null"`
	CreatedAt       time.Time
}

func (VendaManual) TableName() string { return "venda_manuais" }

func (v *VendaManual) BeforeCreate(*gorm.DB) error {
	novoID(&v.ID)
	return nil
}

// Retirada (sangria) is cash taken out of the drawer.
type Retirada struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CaixaAberturaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Valor           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observacao      *string
	DataRetirada    time.Time `gorm:"not null"`
	CreatedAt       time.Time
}

func (r *Retirada) BeforeCreate(*gorm.DB) error {
	novoID(&r.ID)
	return nil
}
