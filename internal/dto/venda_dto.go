package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// LancamentoFilter is bound from the query string of the list endpoints.
// An empty CaixaID lists entries of every session.
type LancamentoFilter struct {
	CaixaID string `form:"caixaId" validate:"omitempty,uuid"`
	Limit   int    `form:"limit,default=200" validate:"min=1,max=1000"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVendaRequest struct {
	Nome       string          `json:"nome"       validate:"required,max=200"`
	Quantidade int             `json:"quantidade" validate:"min=1"`
	Valor      decimal.Decimal `json:"valor"      validate:"min=0"`
	Observacao *string         `json:"observacao"`
}

// RegistrarVendaRequest is a sale typed in by staff.
type RegistrarVendaRequest struct {
	CaixaAberturaID string             `json:"caixa_abertura_id" validate:"omitempty,uuid"`
	ValorTotal      decimal.Decimal    `json:"valor_total"       validate:"gt=0"`
	TipoPagamento   string             `json:"tipo_pagamento"    validate:"required"`
	NomeCliente     string             `json:"nome_cliente"      validate:"max=200"`
	TelefoneCliente string             `json:"telefone_cliente"  validate:"max=50"`
	TipoPedido      string             `json:"tipo_pedido"       validate:"max=30"`
	Endereco        *string            `json:"endereco"`
	Produtos        []ItemVendaRequest `json:"produtos"          validate:"dive"`
}

type AtualizarVendaRequest struct {
	TipoPagamento string `json:"tipo_pagamento" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoVendaResponse struct {
	ID         string          `json:"id"`
	Nome       string          `json:"nome"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
	Adicionais json.RawMessage `json:"adicionais"`
	Observacao *string         `json:"observacao"`
}

type VendaResponse struct {
	ID              string                 `json:"id"`
	CaixaAberturaID string                 `json:"caixa_abertura_id"`
	DataVenda       string                 `json:"data_venda"`
	DataPedido      string                 `json:"data_pedido"`
	ValorTotal      decimal.Decimal        `json:"valor_total"`
	TipoPagamento   string                 `json:"tipo_pagamento"`
	Manual          bool                   `json:"manual"`
	NomeCliente     string                 `json:"nome_cliente"`
	TelefoneCliente string                 `json:"telefone_cliente"`
	TipoPedido      string                 `json:"tipo_pedido"`
	Endereco        *string                `json:"endereco"`
	Produtos        []ProdutoVendaResponse `json:"produtos"`
}

// ─── Webhook ─────────────────────────────────────────────────────────────────

type WebhookVendaData struct {
	ID              string          `json:"id"`
	NomeCliente     string          `json:"nome_cliente"`
	ValorTotal      decimal.Decimal `json:"valor_total"`
	TipoPagamento   string          `json:"tipo_pagamento"`
	DataVenda       string          `json:"data_venda"`
	DataPedido      string          `json:"data_pedido"`
	CaixaAberturaID string          `json:"caixa_abertura_id"`
	ProdutosCount   int             `json:"produtos_count"`
}

type WebhookResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	VendaID string           `json:"venda_id"`
	Data    WebhookVendaData `json:"data"`
}
