package dto

import (
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/conciliacao"

	"github.com/shopspring/decimal"
)

// ComprovanteCaixa carries what the thermal receipt and the PDF report print.
// Times are already in the business time zone.
type ComprovanteCaixa struct {
	CaixaAberturaID string
	RestauranteNome string
	RestauranteCNPJ string
	Fechado         bool
	DataAbertura    time.Time
	DataFechamento  *time.Time
	EmitidoEm       time.Time
	Resumo          conciliacao.Resumo
	Retiradas       []RetiradaComprovante
	Observacoes     string
}

type RetiradaComprovante struct {
	Valor      decimal.Decimal
	Observacao string
	Data       time.Time
}
