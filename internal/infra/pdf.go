package infra

// pdf.go renders the caixa report on an 80 mm roll with go-pdf/fpdf:
//   - restaurant header and session timestamps
//   - drawer totals
//   - per-method table (system, manual, difference)
//   - withdrawals
//   - cash balance and net revenue

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/printer"

	"github.com/go-pdf/fpdf"
)

const dataHoraPDF = "02/01/2006 15:04"

// RelatorioPDF writes the report for c and returns the PDF bytes.
func RelatorioPDF(c dto.ComprovanteCaixa) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 200},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(true, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	w := pageW - 8
	linha := func() {
		pdf.Ln(1)
		pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
		pdf.Ln(2)
	}
	kv := func(k, v string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 8)
		pdf.CellFormat(w*0.6, 5, tr(k), "", 0, "L", false, 0, "")
		pdf.CellFormat(w*0.4, 5, tr(v), "", 1, "R", false, 0, "")
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(w, 6, tr(c.RestauranteNome), "", 1, "C", false, 0, "")
	if c.RestauranteCNPJ != "" {
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(w, 4, "CNPJ: "+c.RestauranteCNPJ, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	titulo := "COMPROVANTE DE CAIXA (PARCIAL)"
	if c.Fechado {
		titulo = "FECHAMENTO DE CAIXA"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(w, 5, titulo, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(w, 4, "Abertura: "+c.DataAbertura.Format(dataHoraPDF), "", 1, "C", false, 0, "")
	if c.DataFechamento != nil {
		pdf.CellFormat(w, 4, "Fechamento: "+c.DataFechamento.Format(dataHoraPDF), "", 1, "C", false, 0, "")
	}
	linha()

	// ── Totals ───────────────────────────────────────────────────────────────
	r := c.Resumo
	kv("Valor de Abertura:", printer.FormatarMoeda(r.ValorAbertura), false)
	kv("Vendas em Dinheiro:", printer.FormatarMoeda(r.TotalVendasDinheiro), false)
	kv("Total de Vendas:", printer.FormatarMoeda(r.TotalVendas), false)
	kv("Total de Retiradas:", printer.FormatarMoeda(r.TotalRetiradas), false)
	linha()

	// ── Per method ───────────────────────────────────────────────────────────
	c1, c2 := w*0.34, w*0.22
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(c1, 5, "Forma", "B", 0, "L", false, 0, "")
	pdf.CellFormat(c2, 5, "Sistema", "B", 0, "R", false, 0, "")
	pdf.CellFormat(c2, 5, "Manual", "B", 0, "R", false, 0, "")
	pdf.CellFormat(c2, 5, tr("Diferença"), "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	for _, t := range r.PorTipo {
		if t.Sistema.IsZero() && t.Manual.IsZero() {
			continue
		}
		pdf.CellFormat(c1, 5, tr(t.TipoPagamento.Rotulo()), "", 0, "L", false, 0, "")
		pdf.CellFormat(c2, 5, t.Sistema.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(c2, 5, t.Manual.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(c2, 5, t.Diferenca.StringFixed(2), "", 1, "R", false, 0, "")
	}
	linha()

	// ── Withdrawals ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(w, 5, "RETIRADAS", "", 1, "C", false, 0, "")
	if len(c.Retiradas) == 0 {
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(w, 4, "Nenhuma retirada", "", 1, "C", false, 0, "")
	}
	for _, ret := range c.Retiradas {
		kv(printer.ResumirObservacao(ret.Observacao), printer.FormatarMoeda(ret.Valor), false)
	}
	linha()

	kv("Saldo em Dinheiro:", printer.FormatarMoeda(r.SaldoDinheiro), true)
	kv("Faturamento Final:", printer.FormatarMoeda(r.Faturamento), true)
	kv("Diferença (manual - sistema):", printer.FormatarMoeda(r.DiferencaTotal), false)
	if c.Observacoes != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.MultiCell(w, 4, tr("Obs: "+c.Observacoes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: gerar relatório: %w", err)
	}
	return buf.Bytes(), nil
}

// SalvarRelatorioPDF writes the report under storagePath and returns its path.
func SalvarRelatorioPDF(c dto.ComprovanteCaixa, storagePath string) (string, error) {
	data, err := RelatorioPDF(c)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: criar diretório: %w", err)
	}
	path := filepath.Join(storagePath, fmt.Sprintf("caixa_%s.pdf", c.CaixaAberturaID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("pdf: gravar arquivo: %w", err)
	}
	return path, nil
}
