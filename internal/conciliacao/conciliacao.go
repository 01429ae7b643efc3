// Package conciliacao holds the pure arithmetic of a caixa session: totals per
// payment method, manual versus system differences and the drawer balances.
package conciliacao

import (
	"github.com/silvioaquino/Gestao-PDV/internal/pagamento"

	"github.com/shopspring/decimal"
)

// Lancamento is a sale amount tagged with its payment method.
type Lancamento struct {
	Valor         decimal.Decimal
	TipoPagamento pagamento.Tipo
}

// Entrada carries everything recorded against one session.
type Entrada struct {
	ValorAbertura decimal.Decimal
	Vendas        []Lancamento // system sales
	VendasManuais []Lancamento
	Retiradas     []decimal.Decimal
}

// TotalTipo is one row of the per-method breakdown.
type TotalTipo struct {
	TipoPagamento pagamento.Tipo  `json:"tipo_pagamento"`
	Sistema       decimal.Decimal `json:"sistema"`
	Manual        decimal.Decimal `json:"manual"`
	Total         decimal.Decimal `json:"total"`
	// Diferenca is manual minus system.
	Diferenca decimal.Decimal `json:"diferenca"`
}

// Resumo is the reconciliation of a session.
type Resumo struct {
	ValorAbertura       decimal.Decimal `json:"valor_abertura"`
	TotalVendasDinheiro decimal.Decimal `json:"total_vendas_dinheiro"`
	TotalVendasSistema  decimal.Decimal `json:"total_vendas_sistema"`
	TotalVendasManuais  decimal.Decimal `json:"total_vendas_manuais"`
	TotalVendas         decimal.Decimal `json:"total_vendas"`
	TotalRetiradas      decimal.Decimal `json:"total_retiradas"`
	SaldoDinheiro       decimal.Decimal `json:"saldo_dinheiro"`
	Faturamento         decimal.Decimal `json:"faturamento"`
	DiferencaTotal      decimal.Decimal `json:"diferenca_total"`
	Conferido           bool            `json:"conferido"`
	PorTipo             []TotalTipo     `json:"por_tipo"`
	QtdVendas           int             `json:"qtd_vendas"`
	QtdVendasManuais    int             `json:"qtd_vendas_manuais"`
	QtdRetiradas        int             `json:"qtd_retiradas"`
}

// Calcular reduces an Entrada to its Resumo. Empty inputs yield zero totals.
func Calcular(e Entrada) Resumo {
	sistema := TotaisPorTipo(e.Vendas)
	manual := TotaisPorTipo(e.VendasManuais)
	dif := Diferencas(e.Vendas, e.VendasManuais)

	r := Resumo{
		ValorAbertura:       e.ValorAbertura,
		TotalVendasDinheiro: TotalDinheiro(e.Vendas, e.VendasManuais),
		TotalVendasSistema:  Somar(e.Vendas),
		TotalVendasManuais:  Somar(e.VendasManuais),
		TotalVendas:         TotalVendas(e.Vendas, e.VendasManuais),
		TotalRetiradas:      TotalRetiradas(e.Retiradas),
		DiferencaTotal:      DiferencaTotal(dif),
		PorTipo:             make([]TotalTipo, 0, len(pagamento.Todos)),
		QtdVendas:           len(e.Vendas),
		QtdVendasManuais:    len(e.VendasManuais),
		QtdRetiradas:        len(e.Retiradas),
	}
	r.SaldoDinheiro = SaldoDinheiro(e.ValorAbertura, r.TotalVendasDinheiro, r.TotalRetiradas)
	r.Faturamento = Faturamento(r.TotalVendas, r.TotalRetiradas)
	r.Conferido = !r.DiferencaTotal.IsNegative()

	for _, t := range pagamento.Todos {
		r.PorTipo = append(r.PorTipo, TotalTipo{
			TipoPagamento: t,
			Sistema:       sistema[t],
			Manual:        manual[t],
			Total:         sistema[t].Add(manual[t]),
			Diferenca:     dif[t],
		})
	}
	return r
}

// Tipo returns the breakdown row for t.
func (r Resumo) Tipo(t pagamento.Tipo) TotalTipo {
	for _, row := range r.PorTipo {
		if row.TipoPagamento == t {
			return row
		}
	}
	return TotalTipo{TipoPagamento: t}
}

// Somar adds every amount in ls.
func Somar(ls []Lancamento) decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Valor)
	}
	return total
}

// TotalDinheiro sums cash amounts across system and manual sales.
func TotalDinheiro(vendas, manuais []Lancamento) decimal.Decimal {
	total := decimal.Zero
	for _, ls := range [][]Lancamento{vendas, manuais} {
		for _, l := range ls {
			if l.TipoPagamento == pagamento.Dinheiro {
				total = total.Add(l.Valor)
			}
		}
	}
	return total
}

// TotalVendas sums every sale, system and manual, of any method.
func TotalVendas(vendas, manuais []Lancamento) decimal.Decimal {
	return Somar(vendas).Add(Somar(manuais))
}

func TotalRetiradas(retiradas []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range retiradas {
		total = total.Add(v)
	}
	return total
}

// SaldoDinheiro is the physical cash expected in the drawer. It is the only
// balance that subtracts withdrawals from cash.
func SaldoDinheiro(abertura, dinheiro, retiradas decimal.Decimal) decimal.Decimal {
	return abertura.Add(dinheiro).Sub(retiradas)
}

// Faturamento is the net revenue over all methods.
func Faturamento(totalVendas, retiradas decimal.Decimal) decimal.Decimal {
	return totalVendas.Sub(retiradas)
}

// TotaisPorTipo returns a total for every canonical method, zero included.
func TotaisPorTipo(ls []Lancamento) map[pagamento.Tipo]decimal.Decimal {
	out := make(map[pagamento.Tipo]decimal.Decimal, len(pagamento.Todos))
	for _, t := range pagamento.Todos {
		out[t] = decimal.Zero
	}
	for _, l := range ls {
		out[l.TipoPagamento] = out[l.TipoPagamento].Add(l.Valor)
	}
	return out
}

// Diferencas computes manual minus system for every canonical method.
func Diferencas(vendas, manuais []Lancamento) map[pagamento.Tipo]decimal.Decimal {
	sistema := TotaisPorTipo(vendas)
	manual := TotaisPorTipo(manuais)
	out := make(map[pagamento.Tipo]decimal.Decimal, len(pagamento.Todos))
	for _, t := range pagamento.Todos {
		out[t] = manual[t].Sub(sistema[t])
	}
	return out
}

func DiferencaTotal(dif map[pagamento.Tipo]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, t := range pagamento.Todos {
		total = total.Add(dif[t])
	}
	return total
}
