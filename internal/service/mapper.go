package service

import (
	"encoding/json"
	"time"

	"github.com/silvioaquino/Gestao-PDV/internal/conciliacao"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/model"

	"github.com/shopspring/decimal"
)

func sessaoToResponse(s *model.SessaoCaixa, loc *time.Location) dto.SessaoCaixaResponse {
	resp := dto.SessaoCaixaResponse{
		ID:           s.ID.String(),
		DataAbertura: formatar(s.DataAbertura, loc),
		ValorInicial: s.ValorInicial,
		Observacao:   s.Observacao,
		Status:       string(s.Status),
	}
	if s.UsuarioID != nil {
		uid := s.UsuarioID.String()
		resp.UsuarioID = &uid
	}
	if s.Fechamento != nil {
		df := formatar(s.Fechamento.DataFechamento, loc)
		resp.DataFechamento = &df
	}
	return resp
}

func fechamentoToResponse(f *model.FechamentoCaixa, loc *time.Location) *dto.FechamentoResponse {
	resp := &dto.FechamentoResponse{
		ID:                  f.ID.String(),
		CaixaAberturaID:     f.CaixaAberturaID.String(),
		ValorAbertura:       f.ValorAbertura,
		TotalVendas:         f.TotalVendas,
		TotalVendasDinheiro: f.TotalVendasDinheiro,
		TotalRetiradas:      f.TotalRetiradas,
		SaldoFinal:          f.SaldoFinal,
		Faturamento:         f.Faturamento,
		Diferenca:           f.Diferenca,
		Observacoes:         f.Observacoes,
		DataFechamento:      formatar(f.DataFechamento, loc),
	}
	if len(f.PorTipo) > 0 {
		_ = json.Unmarshal(f.PorTipo, &resp.PorTipo)
	}
	return resp
}

func vendaToResponse(v *model.Venda, loc *time.Location) dto.VendaResponse {
	resp := dto.VendaResponse{
		ID:              v.ID.String(),
		CaixaAberturaID: v.CaixaAberturaID.String(),
		DataVenda:       formatar(v.DataVenda, loc),
		DataPedido:      formatar(v.DataPedido, loc),
		ValorTotal:      v.ValorTotal,
		TipoPagamento:   string(v.TipoPagamento),
		Manual:          v.Manual,
		NomeCliente:     v.NomeCliente,
		TelefoneCliente: v.TelefoneCliente,
		TipoPedido:      v.TipoPedido,
		Endereco:        v.Endereco,
		Produtos:        make([]dto.ProdutoVendaResponse, 0, len(v.Produtos)),
	}
	for _, p := range v.Produtos {
		adicionais := json.RawMessage(p.Adicionais)
		if len(adicionais) == 0 {
			adicionais = json.RawMessage("[]")
		}
		resp.Produtos = append(resp.Produtos, dto.ProdutoVendaResponse{
			ID:         p.ID.String(),
			Nome:       p.Nome,
			Quantidade: p.Quantidade,
			Valor:      p.Valor,
			Adicionais: adicionais,
			Observacao: p.Observacao,
		})
	}
	return resp
}

func vendaManualToResponse(v *model.VendaManual, loc *time.Location) dto.VendaManualResponse {
	return dto.VendaManualResponse{
		ID:              v.ID.String(),
		CaixaAberturaID: v.CaixaAberturaID.String(),
		TipoPagamento:   string(v.TipoPagamento),
		Valor:           v.Valor,
		Descricao:       v.Descricao,
		DataVenda:       formatar(v.DataVenda, loc),
	}
}

func retiradaToResponse(r *model.Retirada, loc *time.Location) dto.RetiradaResponse {
	return dto.RetiradaResponse{
		ID:              r.ID.String(),
		CaixaAberturaID: r.CaixaAberturaID.String(),
		Valor:           r.Valor,
		Observacao:      r.Observacao,
		DataRetirada:    formatar(r.DataRetirada, loc),
	}
}

// movimento is everything recorded against one session.
type movimento struct {
	vendas    []model.Venda
	manuais   []model.VendaManual
	retiradas []model.Retirada
}

func (m movimento) entrada(valorAbertura decimal.Decimal) conciliacao.Entrada {
	e := conciliacao.Entrada{
		ValorAbertura: valorAbertura,
		Vendas:        make([]conciliacao.Lancamento, 0, len(m.vendas)),
		VendasManuais: make([]conciliacao.Lancamento, 0, len(m.manuais)),
		Retiradas:     make([]decimal.Decimal, 0, len(m.retiradas)),
	}
	for _, v := range m.vendas {
		e.Vendas = append(e.Vendas, conciliacao.Lancamento{Valor: v.ValorTotal, TipoPagamento: v.TipoPagamento})
	}
	for _, v := range m.manuais {
		e.VendasManuais = append(e.VendasManuais, conciliacao.Lancamento{Valor: v.Valor, TipoPagamento: v.TipoPagamento})
	}
	for _, r := range m.retiradas {
		e.Retiradas = append(e.Retiradas, r.Valor)
	}
	return e
}
