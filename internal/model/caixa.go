package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StatusCaixa: "ABERTO" | "FECHADO"
type StatusCaixa string

const (
	CaixaAberto  StatusCaixa = "ABERTO"
	CaixaFechado StatusCaixa = "FECHADO"
)

// SessaoCaixa is one opening of the cash drawer. At most one row may be ABERTO;
// the partial unique index turns a concurrent second opening into a duplicate key.
type SessaoCaixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DataAbertura time.Time       `gorm:"not null;index"`
	ValorInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Observacao   *string
	Status       StatusCaixa `gorm:"type:varchar(10);not null;default:'ABERTO';uniqueIndex:idx_caixa_aberto,where:status = 'ABERTO'"`
	UsuarioID    *uuid.UUID  `gorm:"type:uuid"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Fechamento *FechamentoCaixa `gorm:"foreignKey:CaixaAberturaID"`
}

func (SessaoCaixa) TableName() string { return "caixa_aberturas" }

func (s *SessaoCaixa) BeforeCreate(*gorm.DB) error {
	novoID(&s.ID)
	if s.Status == "" {
		s.Status = CaixaAberto
	}
	return nil
}

// Aberta reports whether the session still accepts entries.
func (s *SessaoCaixa) Aberta() bool { return s.Status == CaixaAberto }

// FechamentoCaixa is the immutable snapshot written when a session closes.
type FechamentoCaixa struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CaixaAberturaID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	ValorAbertura       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVendas         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVendasDinheiro decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalRetiradas      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SaldoFinal is the cash expected in the drawer
	SaldoFinal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Faturamento decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Diferenca is the aggregate manual minus system
	Diferenca decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PorTipo keeps the per-method breakdown as computed at close time
	PorTipo        datatypes.JSON
	Observacoes    *string
	DataFechamento time.Time  `gorm:"not null"`
	UsuarioID      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
}

func (FechamentoCaixa) TableName() string { return "caixa_fechamentos" }

func (f *FechamentoCaixa) BeforeCreate(*gorm.DB) error {
	novoID(&f.ID)
	return nil
}

func novoID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
