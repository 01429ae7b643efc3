package model

import (
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Venda is a sale recorded by the order webhook or by staff (Manual = true).
// DataVenda is the ingest time; DataPedido the normalized purchase date.
type Venda struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CaixaAberturaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	DataVenda       time.Time       `gorm:"not null"`
	DataPedido      time.Time       `gorm:"not null"`
	ValorTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TipoPagamento   pagamento.Tipo  `gorm:"type:varchar(20);not null"`
	Manual          bool            `gorm:"not null;default:false"`
	NomeCliente     string          `gorm:"not null;default:''"`
	TelefoneCliente string          `gorm:"not null;default:''"`
	TipoPedido      string          `gorm:"type:varchar(30);not null;default:'DELIVERY'"`
	Endereco        *string
	// DadosPedido is the audit snapshot of the payload as received
	DadosPedido datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Produtos []ProdutoVenda `gorm:"foreignKey:VendaID"`
}

func (v *Venda) BeforeCreate(*gorm.DB) error {
	novoID(&v.ID)
	return nil
}

type ProdutoVenda struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VendaID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Nome       string          `gorm:"not null"`
	Quantidade int             `gorm:"not null;default:1"`
	Valor      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Adicionais datatypes.JSON
	Observacao *string
}

func (p *ProdutoVenda) BeforeCreate(*gorm.DB) error {
	novoID(&p.ID)
	return nil
}
