package dto

import "github.com/shopspring/decimal"

type VendaManualRequest struct {
	CaixaAberturaID string          `json:"caixa_abertura_id" validate:"omitempty,uuid"`
	TipoPagamento   string          `json:"tipo_pagamento"    validate:"required"`
	Valor           decimal.Decimal `json:"valor"             validate:"gt=0"`
	Descricao       *string         `json:"descricao"         validate:"omitempty,max=500"`
}

type VendaManualResponse struct {
	ID              string          `json:"id"`
	CaixaAberturaID string          `json:"caixa_abertura_id"`
	TipoPagamento   string          `json:"tipo_pagamento"`
	Valor           decimal.Decimal `json:"valor"`
	Descricao       *string         `json:"descricao"`
	DataVenda       string          `json:"data_venda"`
}

type RetiradaRequest struct {
	CaixaAberturaID string          `json:"caixa_abertura_id" validate:"omitempty,uuid"`
	Valor           decimal.Decimal `json:"valor"             validate:"gt=0"`
	Observacao      *string         `json:"observacao"        validate:"omitempty,max=500"`
}

type RetiradaResponse struct {
	ID              string          `json:"id"`
	CaixaAberturaID string          `json:"caixa_abertura_id"`
	Valor           decimal.Decimal `json:"valor"`
	Observacao      *string         `json:"observacao"`
	DataRetirada    string          `json:"data_retirada"`
}
