package dto

import (
	"github.com/silvioaquino/Gestao-PDV/internal/conciliacao"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	ValorInicial decimal.Decimal `json:"valor_inicial" validate:"min=0"`
	Observacao   *string         `json:"observacao"    validate:"omitempty,max=500"`
}

type FecharCaixaRequest struct {
	CaixaAberturaID    string          `json:"caixa_abertura_id"    validate:"required,uuid"`
	Observacoes        *string         `json:"observacoes"          validate:"omitempty,max=1000"`
	ValorRetiradaFinal decimal.Decimal `json:"valor_retirada_final" validate:"min=0"`
}

// HistoricoFilter is bound from the query string of GET /api/caixa/historico.
type HistoricoFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessaoCaixaResponse struct {
	ID             string          `json:"id"`
	DataAbertura   string          `json:"data_abertura"`
	ValorInicial   decimal.Decimal `json:"valor_inicial"`
	Observacao     *string         `json:"observacao"`
	Status         string          `json:"status"`
	UsuarioID      *string         `json:"usuario_id,omitempty"`
	DataFechamento *string         `json:"data_fechamento,omitempty"`
}

type CaixaStatusResponse struct {
	CaixaAberto bool                 `json:"caixa_aberto"`
	CaixaAtual  *SessaoCaixaResponse `json:"caixa_atual"`
}

type FechamentoResponse struct {
	ID                  string                  `json:"id"`
	CaixaAberturaID     string                  `json:"caixa_abertura_id"`
	ValorAbertura       decimal.Decimal         `json:"valor_abertura"`
	TotalVendas         decimal.Decimal         `json:"total_vendas"`
	TotalVendasDinheiro decimal.Decimal         `json:"total_vendas_dinheiro"`
	TotalRetiradas      decimal.Decimal         `json:"total_retiradas"`
	SaldoFinal          decimal.Decimal         `json:"saldo_final"`
	Faturamento         decimal.Decimal         `json:"faturamento"`
	Diferenca           decimal.Decimal         `json:"diferenca"`
	PorTipo             []conciliacao.TotalTipo `json:"por_tipo"`
	Observacoes         *string                 `json:"observacoes"`
	DataFechamento      string                  `json:"data_fechamento"`
}

// CaixaDetalheResponse is a session with everything recorded against it and
// its reconciliation.
type CaixaDetalheResponse struct {
	Caixa         SessaoCaixaResponse   `json:"caixa"`
	Resumo        conciliacao.Resumo    `json:"resumo"`
	Vendas        []VendaResponse       `json:"vendas"`
	VendasManuais []VendaManualResponse `json:"vendas_manuais"`
	Retiradas     []RetiradaResponse    `json:"retiradas"`
	Fechamento    *FechamentoResponse   `json:"fechamento,omitempty"`
}

type HistoricoResponse struct {
	Data  []SessaoCaixaResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

type ImpressaoResponse struct {
	CaixaAberturaID string `json:"caixa_abertura_id"`
	Enfileirado     bool   `json:"enfileirado"`
}

// Resposta is the success envelope.
type Resposta struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}
