package printer

import (
	"strings"

	"github.com/silvioaquino/Gestao-PDV/internal/dto"

	"github.com/shopspring/decimal"
)

// maxObsRetirada is how much of a withdrawal note fits next to its amount.
const maxObsRetirada = 35

const dataHora = "02/01/2006 15:04"

// MontarComprovante renders the caixa receipt. Open sessions print as a
// partial report.
func MontarComprovante(c dto.ComprovanteCaixa, width int) []byte {
	d := NewDocument(width)
	r := c.Resumo

	d.SetAlign(AlignCenter).SetBold(true).SetFontSize(FontTall)
	d.Text(ascii(strings.ToUpper(c.RestauranteNome)))
	d.SetFontSize(FontNormal).SetBold(false)
	if c.RestauranteCNPJ != "" {
		d.Text("CNPJ: " + c.RestauranteCNPJ)
	}
	d.FeedLines(1)

	d.SetBold(true)
	if c.Fechado {
		d.Text("FECHAMENTO DE CAIXA")
	} else {
		d.Text("COMPROVANTE DE CAIXA (PARCIAL)")
	}
	d.SetBold(false)
	d.Text("Abertura: " + c.DataAbertura.Format(dataHora))
	if c.DataFechamento != nil {
		d.Text("Fechamento: " + c.DataFechamento.Format(dataHora))
	}
	d.Text("Emitido em: " + c.EmitidoEm.Format(dataHora))

	d.SetAlign(AlignLeft).Separator('-')
	d.KeyValue("Valor de Abertura:", FormatarMoeda(r.ValorAbertura))
	d.KeyValue("Vendas em Dinheiro:", FormatarMoeda(r.TotalVendasDinheiro))
	d.KeyValue("Total de Vendas:", FormatarMoeda(r.TotalVendas))
	d.KeyValue("Total de Retiradas:", FormatarMoeda(r.TotalRetiradas))
	d.Separator('-')

	d.SetAlign(AlignCenter).SetBold(true).Text("VENDAS POR FORMA PAGTO").SetBold(false)
	d.SetAlign(AlignLeft)
	for _, t := range r.PorTipo {
		if t.Total.IsPositive() {
			d.KeyValue(ascii(t.TipoPagamento.Rotulo())+":", FormatarMoeda(t.Total))
		}
	}
	d.Separator('-')

	d.SetAlign(AlignCenter).SetBold(true).Text("DETALHES DAS RETIRADAS").SetBold(false)
	d.SetAlign(AlignLeft)
	if len(c.Retiradas) == 0 {
		d.SetAlign(AlignCenter).Text("Nenhuma retirada").SetAlign(AlignLeft)
	}
	for _, ret := range c.Retiradas {
		d.KeyValue(FormatarMoeda(ret.Valor), ascii(ResumirObservacao(ret.Observacao)))
	}
	d.Separator('-')

	d.SetBold(true)
	d.KeyValue("Saldo em Dinheiro:", FormatarMoeda(r.SaldoDinheiro))
	d.KeyValue("Faturamento Final:", FormatarMoeda(r.Faturamento))
	d.SetBold(false)
	if c.Fechado {
		d.KeyValue("Diferenca (manual - sistema):", FormatarMoeda(r.DiferencaTotal))
	}

	if obs := strings.TrimSpace(c.Observacoes); obs != "" {
		d.Separator('-')
		d.Text("Obs: " + ascii(obs))
	}

	d.Separator('-').SetAlign(AlignCenter)
	if c.Fechado {
		d.Text("*** CAIXA FECHADO ***")
	} else {
		d.Text("*** CAIXA ABERTO ***")
	}
	d.FeedLines(2).Text("--- CORTE AQUI ---").FeedLines(3).Cut()
	return d.Bytes()
}

// ResumirObservacao truncates a withdrawal note to the receipt column.
func ResumirObservacao(obs string) string {
	obs = strings.TrimSpace(obs)
	if obs == "" {
		return "Sem observação"
	}
	runes := []rune(obs)
	if len(runes) <= maxObsRetirada {
		return obs
	}
	return string(runes[:maxObsRetirada]) + "..."
}

// FormatarMoeda renders v as Brazilian currency: R$ 1.234,56.
func FormatarMoeda(v decimal.Decimal) string {
	sinal := ""
	if v.IsNegative() {
		sinal = "-"
		v = v.Neg()
	}
	s := v.StringFixed(2)
	inteiro, centavos, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, ch := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	return sinal + "R$ " + b.String() + "," + centavos
}

var semAcento = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e",
	"í", "i", "ì", "i",
	"ó", "o", "ô", "o", "õ", "o", "ò", "o",
	"ú", "u", "ü", "u", "ù", "u",
	"ç", "c",
	"Á", "A", "À", "A", "Â", "A", "Ã", "A",
	"É", "E", "Ê", "E",
	"Í", "I",
	"Ó", "O", "Ô", "O", "Õ", "O",
	"Ú", "U", "Ü", "U",
	"Ç", "C",
)

// ascii drops diacritics; the receipt is sent in the printer's default
// single-byte code page.
func ascii(s string) string { return semAcento.Replace(s) }
